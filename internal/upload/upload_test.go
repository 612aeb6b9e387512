package upload_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"event-ticketing/internal/upload"
)

// multipartFile builds a real multipart.FileHeader by round-tripping a form
// through the standard parser.
func multipartFile(t *testing.T, field, filename, contentType string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreatePart(map[string][]string{
		"Content-Disposition": {`form-data; name="` + field + `"; filename="` + filename + `"`},
		"Content-Type":        {contentType},
	})
	assert.NoError(t, err)
	_, err = part.Write(content)
	assert.NoError(t, err)
	assert.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	assert.NoError(t, req.ParseMultipartForm(32<<20))

	return req.MultipartForm.File[field][0]
}

func TestSaveAndRemove(t *testing.T) {
	store := upload.NewStore(t.TempDir(), upload.DefaultMaxFileSize)

	fh := multipartFile(t, "profile_image", "my photo.png", "image/png", []byte("png-bytes"))

	key, err := store.Save(fh, upload.PurposeProfileImage)
	assert.NoError(t, err)
	assert.True(t, strings.HasSuffix(key, "_my_photo.png"))

	data, err := os.ReadFile(store.Path(upload.PurposeProfileImage, key))
	assert.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	assert.NoError(t, store.Remove(upload.PurposeProfileImage, key))
	_, err = os.Stat(store.Path(upload.PurposeProfileImage, key))
	assert.True(t, os.IsNotExist(err))
}

func TestSaveGeneratesUniqueKeys(t *testing.T) {
	store := upload.NewStore(t.TempDir(), upload.DefaultMaxFileSize)

	first := multipartFile(t, "f", "same.png", "image/png", []byte("a"))
	second := multipartFile(t, "f", "same.png", "image/png", []byte("b"))

	key1, err := store.Save(first, upload.PurposeEventImage)
	assert.NoError(t, err)
	key2, err := store.Save(second, upload.PurposeEventImage)
	assert.NoError(t, err)

	assert.NotEqual(t, key1, key2)
}

func TestSaveRejectsNonImage(t *testing.T) {
	store := upload.NewStore(t.TempDir(), upload.DefaultMaxFileSize)

	fh := multipartFile(t, "f", "notes.txt", "text/plain", []byte("hello"))

	_, err := store.Save(fh, upload.PurposeProfileImage)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "image")
}

func TestSaveRejectsOversizedFile(t *testing.T) {
	store := upload.NewStore(t.TempDir(), 16)

	fh := multipartFile(t, "f", "big.png", "image/png", bytes.Repeat([]byte("x"), 64))

	_, err := store.Save(fh, upload.PurposeProfileImage)
	assert.Error(t, err)
}

func TestRemoveMissingFileIsNoError(t *testing.T) {
	store := upload.NewStore(t.TempDir(), upload.DefaultMaxFileSize)

	assert.NoError(t, store.Remove(upload.PurposeProfileImage, "never-saved.png"))
	assert.NoError(t, store.Remove(upload.PurposeProfileImage, ""))
}

func TestURL(t *testing.T) {
	assert.Equal(t,
		"http://localhost:5000/uploads/event_images/key.png",
		upload.URL("http://localhost:5000/", upload.PurposeEventImage, "key.png"))
}
