package fix_test

import (
	"errors"
	"testing"

	"github.com/yaklabco/picofix/pkg/fix"
)

func TestValidateEdits(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		edits      []fix.TextEdit
		contentLen int
		wantErr    bool
		errMsg     string
	}{
		{
			name:       "empty edits",
			edits:      nil,
			contentLen: 10,
			wantErr:    false,
		},
		{
			name: "valid edits",
			edits: []fix.TextEdit{
				{StartOffset: 0, EndOffset: 5, NewText: "hello"},
				{StartOffset: 5, EndOffset: 10, NewText: "world"},
			},
			contentLen: 10,
			wantErr:    false,
		},
		{
			name: "negative start offset",
			edits: []fix.TextEdit{
				{StartOffset: -1, EndOffset: 5, NewText: "hello"},
			},
			contentLen: 10,
			wantErr:    true,
			errMsg:     "start offset is negative",
		},
		{
			name: "end before start",
			edits: []fix.TextEdit{
				{StartOffset: 5, EndOffset: 3, NewText: "hello"},
			},
			contentLen: 10,
			wantErr:    true,
			errMsg:     "end offset is before start offset",
		},
		{
			name: "end exceeds content length",
			edits: []fix.TextEdit{
				{StartOffset: 5, EndOffset: 15, NewText: "hello"},
			},
			contentLen: 10,
			wantErr:    true,
			errMsg:     "exceeds content length",
		},
		{
			name: "zero-length edit (insertion)",
			edits: []fix.TextEdit{
				{StartOffset: 5, EndOffset: 5, NewText: "insert"},
			},
			contentLen: 10,
			wantErr:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := fix.ValidateEdits(tt.edits, tt.contentLen)

			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
					return
				}

				var valErr *fix.ValidationError
				if !errors.As(err, &valErr) {
					t.Errorf("expected ValidationError, got %T", err)
					return
				}

				if tt.errMsg != "" && !containsSubstring(err.Error(), tt.errMsg) {
					t.Errorf("error message %q does not contain %q", err.Error(), tt.errMsg)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestSortEdits(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		edits []fix.TextEdit
		want  []fix.TextEdit
	}{
		{
			name:  "empty",
			edits: nil,
			want:  nil,
		},
		{
			name: "already sorted",
			edits: []fix.TextEdit{
				{StartOffset: 0, EndOffset: 5},
				{StartOffset: 5, EndOffset: 10},
			},
			want: []fix.TextEdit{
				{StartOffset: 0, EndOffset: 5},
				{StartOffset: 5, EndOffset: 10},
			},
		},
		{
			name: "reverse order",
			edits: []fix.TextEdit{
				{StartOffset: 5, EndOffset: 10},
				{StartOffset: 0, EndOffset: 5},
			},
			want: []fix.TextEdit{
				{StartOffset: 0, EndOffset: 5},
				{StartOffset: 5, EndOffset: 10},
			},
		},
		{
			name: "same start, different end",
			edits: []fix.TextEdit{
				{StartOffset: 0, EndOffset: 10},
				{StartOffset: 0, EndOffset: 5},
			},
			want: []fix.TextEdit{
				{StartOffset: 0, EndOffset: 5},
				{StartOffset: 0, EndOffset: 10},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			edits := make([]fix.TextEdit, len(tt.edits))
			copy(edits, tt.edits)

			fix.SortEdits(edits)

			if len(edits) != len(tt.want) {
				t.Fatalf("length mismatch: got %d, want %d", len(edits), len(tt.want))
			}

			for i := range edits {
				if edits[i].StartOffset != tt.want[i].StartOffset ||
					edits[i].EndOffset != tt.want[i].EndOffset {
					t.Errorf("edit[%d]: got [%d:%d], want [%d:%d]",
						i, edits[i].StartOffset, edits[i].EndOffset,
						tt.want[i].StartOffset, tt.want[i].EndOffset)
				}
			}
		})
	}
}

func TestDetectConflicts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		edits   []fix.TextEdit
		wantErr bool
	}{
		{
			name:    "empty",
			edits:   nil,
			wantErr: false,
		},
		{
			name: "no conflicts (adjacent)",
			edits: []fix.TextEdit{
				{StartOffset: 0, EndOffset: 5},
				{StartOffset: 5, EndOffset: 10},
			},
			wantErr: false,
		},
		{
			name: "overlapping edits",
			edits: []fix.TextEdit{
				{StartOffset: 0, EndOffset: 7},
				{StartOffset: 5, EndOffset: 10},
			},
			wantErr: true,
		},
		{
			name: "contained edit",
			edits: []fix.TextEdit{
				{StartOffset: 0, EndOffset: 10},
				{StartOffset: 3, EndOffset: 7},
			},
			wantErr: true,
		},
		{
			name: "single edit",
			edits: []fix.TextEdit{
				{StartOffset: 0, EndOffset: 5},
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := fix.DetectConflicts(tt.edits)

			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
					return
				}

				var conflictErr *fix.ConflictError
				if !errors.As(err, &conflictErr) {
					t.Errorf("expected ConflictError, got %T", err)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestPrepareEdits(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		edits      []fix.TextEdit
		contentLen int
		wantErr    bool
		wantLen    int
	}{
		{
			name:       "empty",
			edits:      nil,
			contentLen: 10,
			wantErr:    false,
			wantLen:    0,
		},
		{
			name: "valid non-overlapping",
			edits: []fix.TextEdit{
				{StartOffset: 5, EndOffset: 10},
				{StartOffset: 0, EndOffset: 5},
			},
			contentLen: 10,
			wantErr:    false,
			wantLen:    2,
		},
		{
			name: "validation error",
			edits: []fix.TextEdit{
				{StartOffset: -1, EndOffset: 5},
			},
			contentLen: 10,
			wantErr:    true,
		},
		{
			name: "conflict error",
			edits: []fix.TextEdit{
				{StartOffset: 0, EndOffset: 7},
				{StartOffset: 5, EndOffset: 10},
			},
			contentLen: 10,
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result, err := fix.PrepareEdits(tt.edits, tt.contentLen)

			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}

			if len(result) != tt.wantLen {
				t.Errorf("result length: got %d, want %d", len(result), tt.wantLen)
			}

			// Verify sorted order.
			for i := 1; i < len(result); i++ {
				if result[i].StartOffset < result[i-1].StartOffset {
					t.Error("result not sorted")
				}
			}
		})
	}
}
func containsSubstring(s, substr string) bool {
	return len(s) >= len(substr) && (s == substr || len(substr) == 0 ||
		(len(s) > 0 && containsSubstringHelper(s, substr)))
}

func containsSubstringHelper(s, substr string) bool {
	for i := 0; i <= len(s)-len(substr); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
