package normalize

import (
	"testing"
	"time"

	"github.com/platable/insights-backend/internal/domain"
)

func TestToFloat(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *float64
	}{
		{"plain number", "12.5", fptr(12.5)},
		{"currency prefix", "AED 1,250.75", fptr(1250.75)},
		{"negative", "-3", fptr(-3)},
		{"empty", "", nil},
		{"whitespace only", "   ", nil},
		{"no digits", "n/a", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToFloat(tt.input)
			assertFloatPtr(t, got, tt.want)
		})
	}
}

func TestPctToDecimal(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *float64
	}{
		{"whole percentage", "12", fptr(0.12)},
		{"with percent sign", "12%", fptr(0.12)},
		{"already a fraction", "0.12", fptr(0.12)},
		{"one is a fraction", "1", fptr(1.0)},
		{"negative whole", "-15", fptr(-0.15)},
		{"empty", "", nil},
		{"garbage", "abc", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PctToDecimal(tt.input)
			assertFloatPtr(t, got, tt.want)
		})
	}
}

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"integer", "3", 3},
		{"float truncates", "2.7", 2},
		{"negative clamps", "-1", 0},
		{"empty", "", 0},
		{"garbage", "many", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseQuantity(tt.input); got != tt.want {
				t.Errorf("ParseQuantity(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeState(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"pending", domain.StatePending},
		{" Pending ", domain.StatePending},
		{"cancelled", domain.StateCancelled},
		{"CANCELED", domain.StateCancelled},
		{"completed", domain.StateCompleted},
		{"delivered", domain.StateCompleted},
		{"", domain.StateCompleted},
	}
	for _, tt := range tests {
		if got := NormalizeState(tt.input); got != tt.want {
			t.Errorf("NormalizeState(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestTitleCase(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"pickup", "Pickup"},
		{"DELIVERY", "Delivery"},
		{"  self pickup ", "Self Pickup"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := TitleCase(tt.input); got != tt.want {
			t.Errorf("TitleCase(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string // "" means nil expected
	}{
		{"iso", "2026-01-05", "2026-01-05"},
		{"iso with time", "2026-01-05 14:30:00", "2026-01-05"},
		{"slash month first", "01/05/2026", "2026-01-05"},
		{"unambiguous day first", "25/12/2026", "2026-12-25"},
		{"excel serial", "45292", "2024-01-01"},
		{"empty", "", ""},
		{"garbage", "someday", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseDate(tt.input)
			if tt.want == "" {
				if got != nil {
					t.Fatalf("ParseDate(%q) = %v, want nil", tt.input, got)
				}
				return
			}
			if got == nil {
				t.Fatalf("ParseDate(%q) = nil, want %s", tt.input, tt.want)
			}
			if d := got.Format("2006-01-02"); d != tt.want {
				t.Errorf("ParseDate(%q) = %s, want %s", tt.input, d, tt.want)
			}
		})
	}
}

func TestParseHour(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *int
	}{
		{"24h clock", "14:30", iptr(14)},
		{"24h with seconds", "09:15:00", iptr(9)},
		{"12h clock", "9:30 PM", iptr(21)},
		{"noon fraction", "0.5", iptr(12)},
		{"serial with time", "45292.75", iptr(18)},
		{"bare serial has midnight time", "12", iptr(0)},
		{"lowercase am", "12 am", iptr(0)},
		{"lowercase pm", "1pm", iptr(13)},
		{"empty", "", nil},
		{"garbage", "soon", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseHour(tt.input)
			if tt.want == nil {
				if got != nil {
					t.Fatalf("ParseHour(%q) = %d, want nil", tt.input, *got)
				}
				return
			}
			if got == nil {
				t.Fatalf("ParseHour(%q) = nil, want %d", tt.input, *tt.want)
			}
			if *got != *tt.want {
				t.Errorf("ParseHour(%q) = %d, want %d", tt.input, *got, *tt.want)
			}
		})
	}
}

func TestCustomerIdentity(t *testing.T) {
	tests := []struct {
		name        string
		countryCode string
		phone       string
		email       string
		want        string
	}{
		{"code and phone", "+971", "050-123-4567", "x@y.com", "9710501234567"},
		{"leading zeros stripped", "", "0501234567", "", "501234567"},
		{"falls back to email", "", "", " sam@example.com ", "sam@example.com"},
		{"all empty", "", "", "", ""},
		{"non digits only falls back", "n/a", "-", "sam@example.com", "sam@example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CustomerIdentity(tt.countryCode, tt.phone, tt.email)
			if got != tt.want {
				t.Errorf("CustomerIdentity(%q, %q, %q) = %q, want %q",
					tt.countryCode, tt.phone, tt.email, got, tt.want)
			}
		})
	}
}

func TestBucketForHour(t *testing.T) {
	tests := []struct {
		name string
		hour *int
		want string
	}{
		{"early morning is other", iptr(3), domain.BucketOther},
		{"morning", iptr(6), domain.BucketMorning},
		{"noon", iptr(12), domain.BucketAfternoon},
		{"evening", iptr(18), domain.BucketEvening},
		{"late evening", iptr(23), domain.BucketEvening},
		{"nil hour", nil, domain.BucketOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := domain.BucketForHour(tt.hour); got != tt.want {
				t.Errorf("BucketForHour = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseDateExcelSerialRoundTrip(t *testing.T) {
	// Serial 45292 is 2024-01-01 in the 1900 date system.
	want := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	got := ParseDate("45292")
	if got == nil || !got.Equal(want) {
		t.Fatalf("ParseDate(45292) = %v, want %v", got, want)
	}
}

func fptr(v float64) *float64 { return &v }

func iptr(v int) *int { return &v }

func assertFloatPtr(t *testing.T, got, want *float64) {
	t.Helper()
	if want == nil {
		if got != nil {
			t.Fatalf("got %v, want nil", *got)
		}
		return
	}
	if got == nil {
		t.Fatalf("got nil, want %v", *want)
	}
	if *got != *want {
		t.Errorf("got %v, want %v", *got, *want)
	}
}
