package datauri

import (
	"errors"
	"testing"
)

func Test_Encode(t *testing.T) {
	got := Encode([]byte("<svg/>"), "image/svg+xml")
	want := "data:image/svg+xml;base64,PHN2Zy8+"
	if got != want {
		t.Errorf("Encode() = %q, want %q", got, want)
	}
}

func Test_Encode_DefaultMediaType(t *testing.T) {
	got := Encode([]byte{0x01}, "")
	if got != "data:application/octet-stream;base64,AQ==" {
		t.Errorf("unexpected encoding: %q", got)
	}
}

func Test_EncodeIcon_UsesExtension(t *testing.T) {
	got := EncodeIcon("logo.PNG", []byte("x"))
	if got != "data:image/png;base64,eA==" {
		t.Errorf("unexpected encoding: %q", got)
	}
}

func Test_Decode_ReturnsOriginalBytes(t *testing.T) {
	data, mediaType, err := Decode("data:image/x-icon;base64,AAEC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mediaType != "image/x-icon" {
		t.Errorf("mediaType = %q, want image/x-icon", mediaType)
	}
	if len(data) != 3 || data[0] != 0 || data[1] != 1 || data[2] != 2 {
		t.Errorf("unexpected bytes: %v", data)
	}
}

func Test_Decode_Malformed(t *testing.T) {
	inputs := []string{
		"blob:abc",
		"data:image/png,rawtext",
		"data:image/png;base64",
		"data:image/png;base64,!!!",
	}
	for _, input := range inputs {
		if _, _, err := Decode(input); !errors.Is(err, ErrMalformed) {
			t.Errorf("Decode(%q) error = %v, want ErrMalformed", input, err)
		}
	}
}

func Test_Is(t *testing.T) {
	if !Is("data:image/png;base64,AA==") {
		t.Error("expected data URI to be recognized")
	}
	if Is("/blob/abc") {
		t.Error("viewer URL is not a data URI")
	}
}
