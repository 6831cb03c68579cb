package notes

import (
	"errors"
	"testing"
	"time"
)

func TestFileRecord_Validate(t *testing.T) {
	t0 := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	valid := FileRecord{ID: "a", Name: "n", Type: "text", CreatedAt: t0, ModifiedAt: t0}

	tests := []struct {
		name    string
		mutate  func(*FileRecord)
		wantErr bool
	}{
		{name: "valid", mutate: func(*FileRecord) {}},
		{name: "empty name and content allowed", mutate: func(r *FileRecord) { r.Name, r.Content = "", "" }},
		{name: "modified after created", mutate: func(r *FileRecord) { r.ModifiedAt = t0.Add(time.Hour) }},
		{name: "empty id", mutate: func(r *FileRecord) { r.ID = "" }, wantErr: true},
		{name: "id with slash", mutate: func(r *FileRecord) { r.ID = "a/b" }, wantErr: true},
		{name: "id dot dot", mutate: func(r *FileRecord) { r.ID = ".." }, wantErr: true},
		{name: "id with leading dot", mutate: func(r *FileRecord) { r.ID = ".hidden" }, wantErr: true},
		{name: "id shaped like a temp file", mutate: func(r *FileRecord) { r.ID = ".tmp-abc" }, wantErr: true},
		{name: "id with NUL", mutate: func(r *FileRecord) { r.ID = "a\x00b" }, wantErr: true},
		{name: "id with newline", mutate: func(r *FileRecord) { r.ID = "a\nb" }, wantErr: true},
		{name: "id with inner dot", mutate: func(r *FileRecord) { r.ID = "a.b" }},
		{name: "zero created", mutate: func(r *FileRecord) { r.CreatedAt = time.Time{} }, wantErr: true},
		{name: "modified before created", mutate: func(r *FileRecord) { r.ModifiedAt = t0.Add(-time.Second) }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid
			tt.mutate(&r)
			err := r.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidRecord) {
				t.Errorf("Validate() error = %v, want ErrInvalidRecord", err)
			}
		})
	}
}

func TestValidateScope(t *testing.T) {
	valid := []string{"files", "work/drafts", "user-1"}
	invalid := []string{"", "/abs", "a//b", "a/../b", "..", ".", `a\b`, "trailing/"}

	for _, s := range valid {
		if err := ValidateScope(s); err != nil {
			t.Errorf("ValidateScope(%q) error = %v", s, err)
		}
	}
	for _, s := range invalid {
		if err := ValidateScope(s); !errors.Is(err, ErrInvalidScope) {
			t.Errorf("ValidateScope(%q) error = %v, want ErrInvalidScope", s, err)
		}
	}
}

func TestFileRecord_Clone(t *testing.T) {
	size := int64(3)
	r := &FileRecord{ID: "a", Size: &size}

	c := r.Clone()
	*c.Size = 99
	c.Name = "changed"

	if *r.Size != 3 || r.Name != "" {
		t.Errorf("Clone() shares state with original: %+v", r)
	}
}

func TestIconFor(t *testing.T) {
	tests := map[string]string{
		"image":   "image",
		"audio":   "music",
		"video":   "video",
		"archive": "archive",
		"code":    "code",
		"text":    "file-text",
		"":        "file-text",
		"pdf":     "file-text",
	}
	for typ, want := range tests {
		if got := IconFor(typ); got != want {
			t.Errorf("IconFor(%q) = %q, want %q", typ, got, want)
		}
	}
}

func TestExportFilename(t *testing.T) {
	tests := map[string]string{
		"Shopping":   "Shopping.txt",
		"  padded  ": "padded.txt",
		"a/b\\c:d":   "a_b_c_d.txt",
		"":           "Untitled Note.txt",
		"..":         "Untitled Note.txt",
		"notes.md":   "notes.md.txt",
	}
	for name, want := range tests {
		if got := ExportFilename(name); got != want {
			t.Errorf("ExportFilename(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{ErrNotFound, "not_found"},
		{errors.Join(errors.New("ctx"), ErrCorruptRecord), "corrupt_record"},
		{ErrInvalidRecord, "invalid_record"},
		{ErrInvalidScope, "invalid_scope"},
		{ErrStorageFailure, "storage_failure"},
		{errors.New("boom"), "other"},
	}
	for _, tt := range tests {
		if got := ErrorKind(tt.err); got != tt.want {
			t.Errorf("ErrorKind(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
