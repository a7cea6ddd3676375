package todo

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"   ", ""},
		{"\t\n ", ""},
		{"a", "a"},
		{"  a   b  ", "a b"},
		{"Buy\tmilk\n\ntoday", "Buy milk today"},
		{"already clean", "already clean"},
		{"a\xffb", "a\uFFFDb"},
		{"  \xfe\xff  x", "\uFFFD x"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in), "Sanitize(%q)", tt.in)
		})
	}
}

func TestSanitizeMatchesEncoding(t *testing.T) {
	text := Sanitize("caf\xe9  menu")
	env := Envelope{SchemaVersion: SchemaVersion, Items: []Task{{ID: "a", Text: text}}}

	data, err := env.Encode()
	require.NoError(t, err)
	got, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, text, got.Items[0].Text)
}

func TestParsePriority(t *testing.T) {
	tests := []struct {
		in      string
		want    Priority
		wantErr bool
	}{
		{"low", PriorityLow, false},
		{"Medium", PriorityMedium, false},
		{" HIGH ", PriorityHigh, false},
		{"urgent", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePriority(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPriorityNext(t *testing.T) {
	assert.Equal(t, PriorityMedium, PriorityLow.Next())
	assert.Equal(t, PriorityHigh, PriorityMedium.Next())
	assert.Equal(t, PriorityLow, PriorityHigh.Next())
}

func TestNormalizePriority(t *testing.T) {
	assert.Equal(t, PriorityMedium, NormalizePriority(""))
	assert.Equal(t, PriorityMedium, NormalizePriority("bogus"))
	assert.Equal(t, PriorityHigh, NormalizePriority(PriorityHigh))
}

func TestPatchApply(t *testing.T) {
	now := time.UnixMilli(2_000)
	base := Task{ID: "a", Text: "old", Priority: PriorityLow, CreatedAt: 1_000, UpdatedAt: 1_000}

	t.Run("empty patch stamps time only", func(t *testing.T) {
		task := base
		Patch{}.Apply(&task, now)
		assert.Equal(t, int64(2_000), task.UpdatedAt)
		assert.Equal(t, "old", task.Text)
		assert.Equal(t, PriorityLow, task.Priority)
		assert.False(t, task.Completed)
	})

	t.Run("text is sanitized", func(t *testing.T) {
		task := base
		text := "  new   text "
		Patch{Text: &text}.Apply(&task, now)
		assert.Equal(t, "new text", task.Text)
	})

	t.Run("blank text is ignored", func(t *testing.T) {
		task := base
		text := "   "
		Patch{Text: &text}.Apply(&task, now)
		assert.Equal(t, "old", task.Text)
	})

	t.Run("invalid priority is ignored", func(t *testing.T) {
		task := base
		p := Priority("urgent")
		Patch{Priority: &p}.Apply(&task, now)
		assert.Equal(t, PriorityLow, task.Priority)
	})

	t.Run("created at never changes", func(t *testing.T) {
		task := base
		done := true
		Patch{Completed: &done}.Apply(&task, now)
		assert.Equal(t, int64(1_000), task.CreatedAt)
		assert.True(t, task.Completed)
	})

	t.Run("updated at never moves back", func(t *testing.T) {
		task := base
		Patch{}.Apply(&task, time.UnixMilli(500))
		assert.Equal(t, int64(1_000), task.UpdatedAt)
	})
}

func TestEncodeDecode(t *testing.T) {
	env := Envelope{
		SchemaVersion: SchemaVersion,
		Items: []Task{
			{ID: "b", Text: "second", Priority: PriorityHigh, CreatedAt: 20, UpdatedAt: 25},
			{ID: "a", Text: "first", Completed: true, Priority: PriorityLow, CreatedAt: 10, UpdatedAt: 10},
		},
	}

	data, err := env.Encode()
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(data), "}\n"), "expected trailing newline")
	assert.Contains(t, string(data), "\n  \"items\"", "expected 2-space indentation")

	got, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, env, got)
}

func TestEncodeNilItems(t *testing.T) {
	data, err := Envelope{SchemaVersion: SchemaVersion}.Encode()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"items": []`)
}

func TestDecodeDefaultsPriority(t *testing.T) {
	env, err := Decode([]byte(`{"schemaVersion":1,"items":[{"id":"a","text":"x"}]}`))
	require.NoError(t, err)
	require.Len(t, env.Items, 1)
	assert.Equal(t, PriorityMedium, env.Items[0].Priority)
}

func TestEnvelopeMutations(t *testing.T) {
	env := NewEnvelope()
	env.Prepend(Task{ID: "a", Text: "first"})
	env.Prepend(Task{ID: "b", Text: "second"})

	require.Len(t, env.Items, 2)
	assert.Equal(t, "b", env.Items[0].ID)
	assert.Equal(t, "a", env.Items[1].ID)

	task := env.GetTask("a")
	require.NotNil(t, task)
	assert.Equal(t, "first", task.Text)
	assert.Nil(t, env.GetTask("zzz"))

	snapshot := env.Clone()
	require.True(t, env.Remove("b"))
	assert.False(t, env.Remove("b"), "second Remove(b)")
	require.Len(t, env.Items, 1)
	assert.Equal(t, "a", env.Items[0].ID)

	require.Len(t, snapshot.Items, 2, "Clone was affected by Remove")
	assert.Equal(t, "b", snapshot.Items[0].ID)
}

func TestNewIDUnique(t *testing.T) {
	const n = 10000
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		id := NewID()
		require.NotEmpty(t, id)
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %q after %d ids", id, i)
		seen[id] = struct{}{}
	}
}

func TestFallbackIDUnique(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	const n = 10000
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		// Same timestamp on purpose: uniqueness must come from the suffix.
		id := FallbackID(now)
		_, dup := seen[id]
		require.False(t, dup, "duplicate fallback id %q", id)
		seen[id] = struct{}{}
	}
	assert.True(t, strings.HasPrefix(FallbackID(now), "loyw3v28-"))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		blob  string
		valid bool
	}{
		{"empty envelope", `{"schemaVersion":1,"items":[]}`, true},
		{"valid items", `{"schemaVersion":1,"items":[{"id":"a","text":"x","completed":false,"priority":"low","createdAt":1,"updatedAt":2}]}`, true},
		{"minimal item", `{"schemaVersion":1,"items":[{"id":"a","text":"x"}]}`, true},
		{"negative timestamps", `{"schemaVersion":1,"items":[{"id":"a","text":"x","createdAt":-5,"updatedAt":-5}]}`, true},
		{"extra fields tolerated", `{"schemaVersion":1,"items":[],"theme":"dark"}`, true},
		{"wrong version", `{"schemaVersion":2,"items":[]}`, false},
		{"version zero", `{"schemaVersion":0,"items":[]}`, false},
		{"version as string", `{"schemaVersion":"1","items":[]}`, false},
		{"missing version", `{"items":[]}`, false},
		{"items object", `{"schemaVersion":1,"items":{}}`, false},
		{"items null", `{"schemaVersion":1,"items":null}`, false},
		{"items missing", `{"schemaVersion":1}`, false},
		{"top-level array", `[]`, false},
		{"top-level null", `null`, false},
		{"unparsable", `{"schemaVersion":1,`, false},
		{"trailing garbage", `{"schemaVersion":1,"items":[]} x`, false},
		{"empty blob", ``, false},
		{"item not object", `{"schemaVersion":1,"items":[42]}`, false},
		{"item missing id", `{"schemaVersion":1,"items":[{"text":"x"}]}`, false},
		{"item empty text", `{"schemaVersion":1,"items":[{"id":"a","text":""}]}`, false},
		{"item blank text", `{"schemaVersion":1,"items":[{"id":"a","text":"   "}]}`, false},
		{"item unicode blank text", `{"schemaVersion":1,"items":[{"id":"a","text":"\u00a0\u2003"}]}`, false},
		{"item bad priority", `{"schemaVersion":1,"items":[{"id":"a","text":"x","priority":"urgent"}]}`, false},
		{"item bad completed", `{"schemaVersion":1,"items":[{"id":"a","text":"x","completed":"yes"}]}`, false},
		{"item fractional timestamp", `{"schemaVersion":1,"items":[{"id":"a","text":"x","createdAt":1.5}]}`, false},
		{"duplicate ids", `{"schemaVersion":1,"items":[{"id":"a","text":"x"},{"id":"a","text":"y"}]}`, false},
	}

	validators := map[string]*Validator{
		"schema":  NewValidator(),
		"minimal": {},
	}

	for vname, v := range validators {
		for _, tt := range tests {
			t.Run(vname+"/"+tt.name, func(t *testing.T) {
				result := v.Validate([]byte(tt.blob))
				assert.Equal(t, tt.valid, result.Valid, "errors: %v", result.Errors)
				if !tt.valid {
					assert.Error(t, result.Err())
				}
			})
		}
	}
}

func TestValidatorUsesSchema(t *testing.T) {
	result := NewValidator().Validate([]byte(`{"schemaVersion":1,"items":[]}`))
	assert.True(t, result.UsedSchema, "warnings: %v", result.Warnings)

	var zero Validator
	result = zero.Validate([]byte(`{"schemaVersion":1,"items":[]}`))
	assert.False(t, result.UsedSchema, "zero Validator should not use schema")
	assert.NotEmpty(t, result.Warnings, "expected warning when schema is not available")
}

func TestValidationErrorPaths(t *testing.T) {
	result := NewValidator().Validate([]byte(`{"schemaVersion":1,"items":[{"id":"a","text":""}]}`))
	require.False(t, result.Valid)

	found := false
	for _, err := range result.Errors {
		var ve *ValidationError
		if errors.As(err, &ve) && strings.HasPrefix(ve.Path, "items[0]") {
			found = true
		}
	}
	assert.True(t, found, "expected an error under items[0], got %v", result.Errors)
}

func TestJSONPointerToPath(t *testing.T) {
	tests := []struct {
		ptr  string
		want string
	}{
		{"", ""},
		{"#", ""},
		{"/items", "items"},
		{"/items/0/text", "items[0].text"},
		{"#/items/12/id", "items[12].id"},
		{"/a~1b/c~0d", "a/b.c~d"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, jsonPointerToPath(tt.ptr), "jsonPointerToPath(%q)", tt.ptr)
	}
}
