package storage

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"face.jpg", "face.jpg"},
		{"my photo.png", "my_photo.png"},
		{"../../etc/passwd", "passwd"},
		{`C:\Users\me\selfie.jpeg`, "selfie.jpeg"},
		{"ümlaut-bild.jpg", "mlaut-bild.jpg"},
		{".hidden", "hidden"},
		{"", "upload"},
		{"///", "upload"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFilename(tt.in))
		})
	}
}

func TestUploadKey(t *testing.T) {
	id := uuid.MustParse("6f1c2c1e-4d55-4a3a-9d1c-0a6f1f7f2b10")
	assert.Equal(t, "uploads/6f1c2c1e-4d55-4a3a-9d1c-0a6f1f7f2b10_my_face.jpg", UploadKey(id, "my face.jpg"))
}
