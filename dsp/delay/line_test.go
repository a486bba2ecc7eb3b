package delay

import "testing"

func TestNew(t *testing.T) {
	tests := []struct {
		name  string
		delay int
		want  int
	}{
		{"positive", 8, 8},
		{"zero", 0, 0},
		{"negative clamps", -3, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New(tt.delay)
			if d.Delay() != tt.want {
				t.Errorf("Delay() = %d, want %d", d.Delay(), tt.want)
			}
		})
	}
}

func TestPassthrough(t *testing.T) {
	d := New(0)
	buf := []float64{1, 2, 3}
	d.ProcessInPlace(buf)
	for i, want := range []float64{1, 2, 3} {
		if buf[i] != want {
			t.Errorf("buf[%d] = %f, want %f", i, buf[i], want)
		}
	}
}

func TestProcessInPlaceShiftsByDelay(t *testing.T) {
	d := New(3)
	buf := []float64{1, 2, 3, 4, 5, 6}
	d.ProcessInPlace(buf)

	want := []float64{0, 0, 0, 1, 2, 3}
	for i := range want {
		if buf[i] != want[i] {
			t.Fatalf("buf = %v, want %v", buf, want)
		}
	}
}

func TestStateCarriesAcrossBlocks(t *testing.T) {
	d := New(2)

	first := []float64{1, 2, 3}
	d.ProcessInPlace(first)

	second := []float64{4, 5, 6}
	d.ProcessInPlace(second)

	// Samples 2 and 3 exited the first block's window and must lead the second.
	want := []float64{2, 3, 4}
	for i := range want {
		if second[i] != want[i] {
			t.Fatalf("second = %v, want %v", second, want)
		}
	}
}

func TestProcessSample(t *testing.T) {
	d := New(1)
	if got := d.ProcessSample(1); got != 0 {
		t.Fatalf("first output = %f, want 0", got)
	}
	if got := d.ProcessSample(2); got != 1 {
		t.Fatalf("second output = %f, want 1", got)
	}
}

func TestReset(t *testing.T) {
	d := New(2)
	d.ProcessInPlace([]float64{1, 2, 3})
	d.Reset()

	buf := []float64{7, 8}
	d.ProcessInPlace(buf)
	if buf[0] != 0 || buf[1] != 0 {
		t.Fatalf("after Reset buf = %v, want leading zeros", buf)
	}
}
