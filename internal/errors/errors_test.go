package errors

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFolioErrorError(t *testing.T) {
	tests := []struct {
		name     string
		err      *FolioError
		expected string
	}{
		{
			name:     "code and message",
			err:      NewValidationError(ErrCodeTitleMissing, "title is required"),
			expected: "[TITLE_MISSING] title is required",
		},
		{
			name:     "with path",
			err:      NewValidationError(ErrCodeDateInvalid, "unparseable date").WithPath("blog/en/a.md"),
			expected: "[DATE_INVALID] blog/en/a.md: unparseable date",
		},
		{
			name:     "with cause",
			err:      NewIOError(ErrCodeReadFailed, "read post", fs.ErrPermission),
			expected: "[READ_FAILED] read post: permission denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestFolioErrorUnwrap(t *testing.T) {
	err := NewIOError(ErrCodeReadFailed, "read post", fs.ErrNotExist)

	assert.True(t, stderrors.Is(err, fs.ErrNotExist))
	assert.Equal(t, fs.ErrNotExist, err.Unwrap())
}

func TestFolioErrorIs(t *testing.T) {
	err := ErrPostNotFound("hello", "en")

	assert.True(t, stderrors.Is(err, NewNotFoundError(ErrCodePostNotFound, "")))
	assert.False(t, stderrors.Is(err, NewNotFoundError(ErrCodeLegalNotFound, "")))
	assert.False(t, stderrors.Is(err, NewValidationError(ErrCodePostNotFound, "")))
}

func TestTypePredicates(t *testing.T) {
	notFound := ErrLegalNotFound("privacy", "de")
	wrapped := fmt.Errorf("handler: %w", notFound)

	assert.True(t, IsNotFound(notFound))
	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsValidation(wrapped))
	assert.False(t, IsNotFound(stderrors.New("plain")))
	assert.True(t, IsValidation(NewValidationError(ErrCodeSlugInvalid, "bad")))
	assert.True(t, IsSecurityError(ErrPathTraversal("../etc")))
	assert.Equal(t, ErrCodeLegalNotFound, CodeOf(wrapped))
	assert.Equal(t, "", CodeOf(stderrors.New("plain")))
}

func TestWithContextAndFields(t *testing.T) {
	err := ErrPostNotFound("hello", "de").WithPath("blog/de/hello.md")

	require.NotNil(t, err.Context)
	assert.Equal(t, "hello", err.Context["slug"])
	assert.Equal(t, "de", err.Context["language"])

	fields := err.Fields()
	assert.Contains(t, fields, "code")
	assert.Contains(t, fields, ErrCodePostNotFound)
	assert.Contains(t, fields, "blog/de/hello.md")
}

func TestWrap(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.Nil(t, Wrap(nil, ErrorTypeIO, ErrCodeReadFailed, "x"))
	})

	t.Run("plain error", func(t *testing.T) {
		cause := stderrors.New("disk on fire")
		err := WrapIO(cause, ErrCodeReadFailed, "read post")

		assert.Equal(t, ErrorTypeIO, err.Type)
		assert.True(t, stderrors.Is(err, cause))
	})

	t.Run("folio error keeps path and context", func(t *testing.T) {
		inner := NewValidationError(ErrCodeDateInvalid, "bad date").
			WithPath("blog/en/a.md").
			WithContext("date", "yesterday")
		err := WrapValidation(inner, ErrCodeFrontmatterInvalid, "front matter rejected")

		assert.Equal(t, "blog/en/a.md", err.Path)
		assert.Equal(t, "yesterday", err.Context["date"])
		assert.Equal(t, ErrCodeFrontmatterInvalid, CodeOf(err))
	})

	t.Run("config", func(t *testing.T) {
		err := WrapConfig(stderrors.New("bad port"), ErrCodeConfigInvalid, "config")
		assert.Equal(t, ErrorTypeConfig, err.Type)
	})
}

func TestCollector(t *testing.T) {
	c := NewCollector()

	assert.False(t, c.HasErrors())
	assert.NoError(t, c.Err())

	c.Add(nil)
	assert.False(t, c.HasErrors())

	c.Add(NewValidationError(ErrCodeTitleMissing, "a"))
	c.Add(NewValidationError(ErrCodeTitleMissing, "b"))
	c.Add(NewValidationError(ErrCodeDateMissing, "c"))
	c.Add(stderrors.New("plain"))

	assert.True(t, c.HasErrors())
	assert.Len(t, c.Errors(), 4)

	grouped := c.ByCode()
	assert.Len(t, grouped[ErrCodeTitleMissing], 2)
	assert.Len(t, grouped[ErrCodeDateMissing], 1)
	assert.Len(t, grouped[""], 1)

	joined := c.Err()
	require.Error(t, joined)
	assert.Contains(t, joined.Error(), "plain")

	c.Clear()
	assert.False(t, c.HasErrors())
}

func TestCollectorConcurrent(t *testing.T) {
	c := NewCollector()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.Add(fmt.Errorf("error %d", i))
		}(i)
	}
	wg.Wait()

	assert.Len(t, c.Errors(), 50)
}

func TestErrorsReturnsCopy(t *testing.T) {
	c := NewCollector()
	c.Add(stderrors.New("one"))

	errs := c.Errors()
	errs[0] = nil

	assert.NotNil(t, c.Errors()[0])
}
