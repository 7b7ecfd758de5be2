package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePhotoType(t *testing.T) {
	assert.True(t, ValidatePhotoType("image/jpeg", "leak.jpg"))
	assert.True(t, ValidatePhotoType("IMAGE/PNG", "leak.png"))
	assert.True(t, ValidatePhotoType("", "leak.webp"))
	assert.True(t, ValidatePhotoType("application/octet-stream", "leak.JPEG"))

	assert.False(t, ValidatePhotoType("application/pdf", "report.pdf"))
	assert.False(t, ValidatePhotoType("video/mp4", "walkthrough.mp4"))
	assert.False(t, ValidatePhotoType("", "noextension"))
}

func TestContentTypeForFilename(t *testing.T) {
	assert.Equal(t, "image/jpeg", ContentTypeForFilename("leak.jpeg"))
	assert.Equal(t, "image/png", ContentTypeForFilename("LEAK.PNG"))
	assert.Equal(t, "application/octet-stream", ContentTypeForFilename("notes.txt"))
}

func TestPhotoKeyLayout(t *testing.T) {
	key := PhotoKey("org-1", "req-2", "photo-3", "Ceiling Stain.JPG")
	assert.Equal(t, "photos/org-1/req-2/photo-3.jpg", key)
}
