package services

import (
	"bytes"
	"mime/multipart"
	"os"
	"strings"
	"testing"
)

// wavHeader is enough of a RIFF/WAVE preamble for content sniffing to call
// the payload audio.
var wavHeader = append([]byte("RIFF\x24\x00\x00\x00WAVEfmt "), make([]byte, 24)...)

func multipartHeaders(t *testing.T, files map[string][]byte) []*multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, content := range files {
		part, err := mw.CreateFormFile("files", name)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write(content); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	reader := multipart.NewReader(&buf, mw.Boundary())
	form, err := reader.ReadForm(32 << 20)
	if err != nil {
		t.Fatalf("read form: %v", err)
	}
	t.Cleanup(func() { form.RemoveAll() })
	return form.File["files"]
}

func newFileService(t *testing.T, cfg FileServiceConfig) FileService {
	t.Helper()
	if cfg.UploadDir == "" {
		cfg.UploadDir = t.TempDir()
	}
	svc, err := NewFileService(cfg, newTestLogger(t))
	if err != nil {
		t.Fatalf("NewFileService: %v", err)
	}
	return svc
}

func TestValidateAndSaveAcceptsAudio(t *testing.T) {
	svc := newFileService(t, FileServiceConfig{
		AllowedFormats: []string{".wav", ".mp3"},
	})
	headers := multipartHeaders(t, map[string][]byte{"call.wav": wavHeader})

	saved, err := svc.ValidateAndSave(headers)
	if err != nil {
		t.Fatalf("ValidateAndSave: %v", err)
	}
	if len(saved) != 1 {
		t.Fatalf("got %d saved files, want 1", len(saved))
	}
	if saved[0].OriginalName != "call.wav" {
		t.Fatalf("original name: %q", saved[0].OriginalName)
	}
	if _, err := os.Stat(saved[0].Path); err != nil {
		t.Fatalf("saved file missing: %v", err)
	}
	if saved[0].Size != int64(len(wavHeader)) {
		t.Fatalf("size: got %d, want %d", saved[0].Size, len(wavHeader))
	}

	svc.Cleanup(saved)
	if _, err := os.Stat(saved[0].Path); !os.IsNotExist(err) {
		t.Fatalf("cleanup left file behind")
	}
}

func TestValidateAndSaveRejectsWrongExtension(t *testing.T) {
	svc := newFileService(t, FileServiceConfig{
		AllowedFormats: []string{".mp3"},
	})
	headers := multipartHeaders(t, map[string][]byte{"call.ogg": wavHeader})

	if _, err := svc.ValidateAndSave(headers); err == nil {
		t.Fatalf("expected extension rejection")
	} else if !strings.Contains(err.Error(), ".ogg") {
		t.Fatalf("error should name the extension: %v", err)
	}
}

func TestValidateAndSaveRejectsNonAudioContent(t *testing.T) {
	svc := newFileService(t, FileServiceConfig{
		AllowedFormats: []string{".wav"},
	})
	headers := multipartHeaders(t, map[string][]byte{"fake.wav": []byte("just some plain text")})

	if _, err := svc.ValidateAndSave(headers); err == nil {
		t.Fatalf("expected content-type rejection for text payload")
	}
}

func TestValidateAndSaveRejectsOversizedFile(t *testing.T) {
	svc := newFileService(t, FileServiceConfig{
		AllowedFormats: []string{".wav"},
		MaxFileSize:    8,
	})
	headers := multipartHeaders(t, map[string][]byte{"big.wav": wavHeader})

	if _, err := svc.ValidateAndSave(headers); err == nil {
		t.Fatalf("expected size rejection")
	}
}

func TestValidateAndSaveRejectsTooManyFiles(t *testing.T) {
	svc := newFileService(t, FileServiceConfig{
		AllowedFormats: []string{".wav"},
		MaxFiles:       1,
	})
	headers := multipartHeaders(t, map[string][]byte{
		"one.wav": wavHeader,
		"two.wav": wavHeader,
	})

	if _, err := svc.ValidateAndSave(headers); err == nil {
		t.Fatalf("expected file-count rejection")
	}
}

func TestValidateAndSaveKeepsNothingOnFailure(t *testing.T) {
	dir := t.TempDir()
	svc := newFileService(t, FileServiceConfig{
		UploadDir:      dir,
		AllowedFormats: []string{".wav"},
	})
	headers := multipartHeaders(t, map[string][]byte{
		"good.wav": wavHeader,
		"bad.wav":  []byte("not audio at all, sorry"),
	})

	if _, err := svc.ValidateAndSave(headers); err == nil {
		t.Fatalf("expected rejection")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read upload dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("upload dir should be empty after failed batch, found %d entries", len(entries))
	}
}

func TestTotalSize(t *testing.T) {
	svc := newFileService(t, FileServiceConfig{})
	files := []SavedFile{{Size: 10}, {Size: 32}}
	if got := svc.TotalSize(files); got != 42 {
		t.Fatalf("total size: got %d, want 42", got)
	}
}
