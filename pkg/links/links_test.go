package links_test

// TEST TYPE: Unit Test
// DEPENDENCIES: None (pure logic)
// PURPOSE: Verify link token resolution: literals, attribute paths,
// nesting order, conditionals, zero-padding, and failure reporting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/ribforge/pkg/errors"
	"github.com/arthur-debert/ribforge/pkg/links"
	"github.com/arthur-debert/ribforge/pkg/types"
)

func resolveContext() *types.ExportContext {
	return &types.ExportContext{
		CurrentFrame:   7,
		CurrentPass:    2,
		CurrentCommand: 7,
		CurrentLibrary: 1,
		DimsResX:       640,
		DimsResY:       480,
		Pass: &types.Pass{
			Name:     "beauty",
			Type:     types.PassTypeBeauty,
			SamplesX: 4,
			SamplesY: 4,
		},
	}
}

func TestResolve(t *testing.T) {
	ectx := resolveContext()

	tests := []struct {
		name     string
		template string
		want     string
	}{
		{
			name:     "literal_text_unchanged",
			template: "Display \"out.tif\" \"file\" \"rgba\"\n",
			want:     "Display \"out.tif\" \"file\" \"rgba\"\n",
		},
		{
			name:     "empty_template",
			template: "",
			want:     "",
		},
		{
			name:     "attribute_path",
			template: "Rotate @[EVAL:.current_frame:]@ 1 0 0",
			want:     "Rotate 7 1 0 0",
		},
		{
			name:     "zero_pad_five",
			template: "@[EVAL:.current_command:#####]@",
			want:     "00007",
		},
		{
			name:     "archive_name_pattern",
			template: "P@[EVAL:.current_pass:#####]@_F@[EVAL:.current_frame:#####]@.rib",
			want:     "P00002_F00007.rib",
		},
		{
			name:     "nested_token_resolves_innermost_first",
			template: "@[EVAL:.current_@[EVAL:frame:]@:]@",
			want:     "7",
		},
		{
			name:     "quoted_literal",
			template: "@[EVAL:\"verbatim text\":]@",
			want:     "verbatim text",
		},
		{
			name:     "quoted_literal_keeps_colon",
			template: "@[EVAL:\"key: value\":]@",
			want:     "key: value",
		},
		{
			name:     "bare_literal",
			template: "@[EVAL:hello:]@",
			want:     "hello",
		},
		{
			name:     "conditional_truthy_condition",
			template: "@[EVAL:\"PixelSamples @[EVAL:.pass.samples_x:]@ @[EVAL:.pass.samples_y:]@\" if @[EVAL:.pass.samples_x:]@ else \"\":]@",
			want:     "PixelSamples 4 4",
		},
		{
			name:     "conditional_zero_condition",
			template: "@[EVAL:\"ShadingRate 1\" if 0 else \"\":]@",
			want:     "",
		},
		{
			name:     "conditional_empty_condition",
			template: "@[EVAL:\"yes\" if  else \"no\":]@",
			want:     "no",
		},
		{
			name:     "conditional_false_word_condition",
			template: "@[EVAL:\"yes\" if False else \"no\":]@",
			want:     "no",
		},
		{
			name:     "conditional_none_condition",
			template: "@[EVAL:\"yes\" if None else \"no\":]@",
			want:     "no",
		},
		{
			name:     "conditional_chains_to_the_right",
			template: "@[EVAL:\"a\" if 0 else \"b\" if c else \"d\":]@",
			want:     "b",
		},
		{
			name:     "multiple_tokens_in_one_line",
			template: "Format @[EVAL:.dims_resx:]@ @[EVAL:.dims_resy:]@ 1",
			want:     "Format 640 480 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := links.Resolve(ectx, tt.template)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			// Resolution consumes tokens, so resolving again is a no-op.
			again, err := links.Resolve(ectx, got)
			require.NoError(t, err)
			assert.Equal(t, got, again)
		})
	}
}

func TestResolveErrors(t *testing.T) {
	ectx := resolveContext()

	tests := []struct {
		name     string
		template string
	}{
		{"unknown_attribute_path", "@[EVAL:.no_such_attr:]@"},
		{"unterminated_token", "@[EVAL:.current_frame:"},
		{"closer_without_opener", "stray ]@ text"},
		{"pad_on_non_numeric", "@[EVAL:hello:#####]@"},
		{"unsupported_token_kind", "@[GLOB:*.rib:]@"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := links.Resolve(ectx, tt.template)
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrResolution))
		})
	}
}

func TestResolveFromRecordsOrigin(t *testing.T) {
	ectx := resolveContext()

	_, err := links.ResolveFrom(ectx, "aqsis/render_command/begin", "@[EVAL:.no_such_attr:]@")
	require.Error(t, err)

	details := errors.GetErrorDetails(err)
	assert.Equal(t, "aqsis/render_command/begin", details["origin"])
	assert.Equal(t, ".no_such_attr", details["expression"])
}

func TestTruthy(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  bool
	}{
		{"empty", "", false},
		{"whitespace_only", "  ", false},
		{"zero", "0", false},
		{"false_lower", "false", false},
		{"false_title", "False", false},
		{"none", "None", false},
		{"nonzero_number", "4", true},
		{"word", "yes", true},
		{"true_word", "True", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, links.Truthy(tt.value))
		})
	}
}
