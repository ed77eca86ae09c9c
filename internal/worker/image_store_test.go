package worker

import (
	"testing"
)

func TestDecodeDataURI(t *testing.T) {
	mime, data, err := decodeDataURI("data:image/png;base64,QUJD")
	if err != nil {
		t.Fatal(err)
	}
	if mime != "image/png" {
		t.Errorf("mime = %q", mime)
	}
	if string(data) != "ABC" {
		t.Errorf("data = %q", data)
	}
}

func TestDecodeDataURIRejectsBadInput(t *testing.T) {
	cases := []string{
		"https://cdn/image.png",
		"data:image/png,plain-payload",
		"data:image/png;base64",
		"data:image/png;base64,not base64 !!!",
	}
	for _, uri := range cases {
		if _, _, err := decodeDataURI(uri); err == nil {
			t.Errorf("decodeDataURI(%q) accepted", uri)
		}
	}
}
