package media

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	bucket      string
	key         string
	contentType string
	body        []byte
	err         error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.bucket = *in.Bucket
	f.key = *in.Key
	if in.ContentType != nil {
		f.contentType = *in.ContentType
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.body = body
	return &s3.PutObjectOutput{}, nil
}

func multipartFile(t *testing.T, field, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(MaxImageSize*2))

	_, header, err := req.FormFile(field)
	require.NoError(t, err)
	return header
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		header  *multipart.FileHeader
		wantExt string
		wantErr error
	}{
		{"png", &multipart.FileHeader{Filename: "a.PNG", Size: 10}, ".png", nil},
		{"jpeg", &multipart.FileHeader{Filename: "photo.jpeg", Size: 10}, ".jpeg", nil},
		{"no extension", &multipart.FileHeader{Filename: "avatar", Size: 10}, "", ErrMissingExtension},
		{"pdf", &multipart.FileHeader{Filename: "cv.pdf", Size: 10}, "", ErrUnsupportedType},
		{"too large", &multipart.FileHeader{Filename: "big.jpg", Size: MaxImageSize + 1}, "", ErrTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ext, err := Validate(tt.header)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantExt, ext)
		})
	}
}

func TestStageAndUpload(t *testing.T) {
	dir := t.TempDir()
	header := multipartFile(t, "avatar", "me.png", []byte("png-bytes"))

	local, err := NewStager(dir).Stage(header)
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(local))
	assert.Equal(t, ".png", filepath.Ext(local))

	putter := &fakePutter{}
	u := NewUploader(putter, S3Config{Bucket: "media", PublicBaseURL: "https://cdn.example.com/"})
	u.now = func() time.Time { return time.Date(2024, 3, 7, 12, 0, 0, 0, time.UTC) }

	url, err := u.Upload(context.Background(), local)
	require.NoError(t, err)

	assert.Equal(t, "media", putter.bucket)
	assert.True(t, strings.HasPrefix(putter.key, "users/2024/3/7/"), putter.key)
	assert.True(t, strings.HasSuffix(putter.key, ".png"), putter.key)
	assert.Equal(t, "image/png", putter.contentType)
	assert.Equal(t, []byte("png-bytes"), putter.body)
	assert.Equal(t, "https://cdn.example.com/"+putter.key, url)

	_, err = os.Stat(local)
	assert.True(t, os.IsNotExist(err), "staged file should be removed")
}

func TestUploadRemovesFileOnFailure(t *testing.T) {
	local := filepath.Join(t.TempDir(), "x.jpg")
	require.NoError(t, os.WriteFile(local, []byte("jpg"), 0o644))

	u := NewUploader(&fakePutter{err: errors.New("bucket unavailable")}, S3Config{Bucket: "media"})
	_, err := u.Upload(context.Background(), local)
	require.Error(t, err)

	_, err = os.Stat(local)
	assert.True(t, os.IsNotExist(err))
}

func TestUploadEmptyPath(t *testing.T) {
	u := NewUploader(&fakePutter{}, S3Config{Bucket: "media"})
	_, err := u.Upload(context.Background(), "")
	assert.Error(t, err)
}

func TestPublicBaseURL(t *testing.T) {
	assert.Equal(t, "https://cdn.example.com",
		S3Config{PublicBaseURL: "https://cdn.example.com/"}.publicBaseURL())
	assert.Equal(t, "http://127.0.0.1:9000/media",
		S3Config{Bucket: "media", Endpoint: "http://127.0.0.1:9000/"}.publicBaseURL())
	assert.Equal(t, "https://media.s3.eu-west-1.amazonaws.com",
		S3Config{Bucket: "media", Region: "eu-west-1"}.publicBaseURL())
}
