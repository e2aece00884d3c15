package ais

import (
	"errors"
	"testing"
)

func TestParseLine_Valid(t *testing.T) {
	r, err := ParseLine("36.05\t123456789\t45\t120.2\t12\t2024-01-01T00:00:00Z\t50\t80")
	if err != nil {
		t.Fatalf("ParseLine: %v", err)
	}
	want := Report{
		MMSI:      "123456789",
		Lat:       36.05,
		Lon:       120.2,
		COG:       45,
		SOG:       12,
		Heading:   50,
		Length:    80,
		Timestamp: "2024-01-01T00:00:00Z",
	}
	if r != want {
		t.Errorf("got %+v, want %+v", r, want)
	}
}

func TestParseLine_TrimsFields(t *testing.T) {
	r, err := ParseLine(" 36.05 \t 123456789\t45 \t120.2\t12\t ts \t50\t80\r\n")
	if err != nil {
		t.Fatalf("ParseLine: %v", err)
	}
	if r.MMSI != "123456789" || r.Lat != 36.05 || r.Timestamp != "ts" || r.Length != 80 {
		t.Errorf("fields not trimmed: %+v", r)
	}
}

func TestParseLine_LengthDefaults(t *testing.T) {
	tests := []struct {
		name   string
		length string
		want   float64
	}{
		{"empty", "", DefaultLength},
		{"garbage", "n/a", DefaultLength},
		{"infinite", "Inf", DefaultLength},
		{"zero kept", "0.0", 0},
		{"fractional", "182.5", 182.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := ParseLine("36.05\t1\t45\t120.2\t12\tts\t50\t" + tt.length)
			if err != nil {
				t.Fatalf("length should never reject a line: %v", err)
			}
			if r.Length != tt.want {
				t.Errorf("Length = %v, want %v", r.Length, tt.want)
			}
		})
	}
}

func TestParseLine_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		field string
	}{
		{"bad lat", "north\t1\t45\t120.2\t12\tts\t50\t80", "lat"},
		{"bad cog", "36.05\t1\tx\t120.2\t12\tts\t50\t80", "cog"},
		{"bad lon", "36.05\t1\t45\t\t12\tts\t50\t80", "lon"},
		{"NaN sog", "36.05\t1\t45\t120.2\tNaN\tts\t50\t80", "sog"},
		{"bad heading", "36.05\t1\t45\t120.2\t12\tts\t-\t80", "heading"},
		{"empty mmsi", "36.05\t\t45\t120.2\t12\tts\t50\t80", "mmsi"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLine(tt.line)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !errors.Is(err, ErrParse) {
				t.Errorf("error %v should match ErrParse", err)
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("error %v should be a *ParseError", err)
			}
			if pe.Field != tt.field {
				t.Errorf("Field = %q, want %q", pe.Field, tt.field)
			}
		})
	}
}

func TestParseLine_FieldCount(t *testing.T) {
	for _, line := range []string{
		"",
		"36.05\t1\t45\t120.2\t12\tts\t50",
		"36.05\t1\t45\t120.2\t12\tts\t50\t80\textra",
		"36.05,1,45,120.2,12,ts,50,80",
	} {
		_, err := ParseLine(line)
		if !errors.Is(err, ErrFieldCount) {
			t.Errorf("ParseLine(%q) error = %v, want ErrFieldCount", line, err)
		}
		if !errors.Is(err, ErrParse) {
			t.Errorf("ParseLine(%q) error should also match ErrParse", line)
		}
	}
}

func TestReport_LineRoundTrip(t *testing.T) {
	in := Report{MMSI: "413000003", Lat: 36.25, Lon: 120.45, COG: 270, SOG: 6.2, Heading: 268, Length: 45, Timestamp: "1649412002"}
	out, err := ParseLine(in.Line())
	if err != nil {
		t.Fatalf("ParseLine(Line()): %v", err)
	}
	if out != in {
		t.Errorf("got %+v, want %+v", out, in)
	}
}

func TestReport_DisplayHeading(t *testing.T) {
	r := Report{COG: 45, Heading: 50}
	if r.DisplayHeading() != 50 {
		t.Errorf("DisplayHeading = %v, want 50", r.DisplayHeading())
	}
	r.Heading = HeadingUnavailable
	if r.DisplayHeading() != 45 {
		t.Errorf("DisplayHeading with heading 511 = %v, want COG 45", r.DisplayHeading())
	}
}
