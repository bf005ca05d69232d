package geo

import "testing"

func TestCalcBounds(t *testing.T) {
	testCases := []struct {
		name   string
		points []Coordinate
		want   Bounds
		wantOk bool
	}{
		{
			name:   "empty",
			points: []Coordinate{},
			wantOk: false,
		},
		{
			name:   "single point degenerate box",
			points: []Coordinate{NewCoordinate(10, 20)},
			want:   NewBounds(10, 20, 10, 20),
			wantOk: true,
		},
		{
			name: "invalid points skipped",
			points: []Coordinate{
				NewCoordinate(10, 20),
				NewCoordinate(500, 500),
				NewCoordinate(-5, 30),
			},
			want:   NewBounds(-5, 20, 10, 30),
			wantOk: true,
		},
		{
			name: "all invalid",
			points: []Coordinate{
				NewCoordinate(91, 0),
				NewCoordinate(0, 181),
			},
			wantOk: false,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CalcBounds(tt.points)
			if ok != tt.wantOk {
				t.Fatalf("CalcBounds ok = %v, want %v", ok, tt.wantOk)
			}
			if ok && got != tt.want {
				t.Errorf("CalcBounds = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestBoundsIsPoint(t *testing.T) {
	b, ok := CalcBounds([]Coordinate{NewCoordinate(10, 20)})
	if !ok || !b.IsPoint() {
		t.Errorf("single-point bounds should be degenerate, got %+v ok=%v", b, ok)
	}
}
