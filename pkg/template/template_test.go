package template

import (
	"testing"

	"github.com/dukex/autoflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaceholders(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "bare and native",
			text: "New order {{order_id}} from {{ company }} ({{order_id}}) at {{now}} {{ .amount }}",
			want: []string{"order_id", "company", "amount"},
		},
		{
			name: "function arguments and nested fields",
			text: "{{ upper .company }} {{ .customer.name }}",
			want: []string{"company", "customer"},
		},
		{
			name: "conditionals",
			text: "{{ if .merchant }}via {{ .merchant }}{{ else }}{{ .company }}{{ end }}",
			want: []string{"merchant", "company"},
		},
		{
			name: "range body is not the payload",
			text: "{{ range .items }}{{ .sku }}{{ end }}",
			want: []string{"items"},
		},
		{
			name: "root variable",
			text: "{{ with .customer }}{{ .name }} at {{ $.company }}{{ end }}",
			want: []string{"customer", "company"},
		},
		{
			name: "plain text",
			text: "no placeholders here",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			names, err := Placeholders(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestPlaceholders_InvalidTemplate(t *testing.T) {
	_, err := Placeholders("Order {{ if .order_id }}open")
	assert.ErrorIs(t, err, ErrInvalidTemplate)

	_, err = RenderString("Order {{ if .order_id }}", map[string]any{"order_id": "x"})
	assert.ErrorIs(t, err, ErrInvalidTemplate)
}

func TestRenderString_BarePlaceholders(t *testing.T) {
	data := map[string]any{
		"order_id": "ORD-1042",
		"company":  "Acme Equipment",
		"amount":   12500.5,
	}

	result, err := RenderString("New order {{order_id}} from {{company}} for {{ .amount }}", data)
	require.NoError(t, err)
	assert.Equal(t, "New order ORD-1042 from Acme Equipment for 12500.5", result)
}

func TestRenderString_NoTemplate(t *testing.T) {
	result, err := RenderString("#orders", nil)
	require.NoError(t, err)
	assert.Equal(t, "#orders", result)
}

func TestRenderString_MissingKey(t *testing.T) {
	_, err := RenderString("Order {{order_id}}", map[string]any{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to execute template")
}

func TestRenderString_Functions(t *testing.T) {
	result, err := RenderString("{{ upper .company }}", map[string]any{"company": "acme"})
	require.NoError(t, err)
	assert.Equal(t, "ACME", result)
}

func TestRenderConfig(t *testing.T) {
	config := map[string]string{
		"channel":         "#orders",
		"messageTemplate": "Order {{order_id}} placed",
	}

	rendered, err := RenderConfig(config, models.TriggerData{"order_id": "ORD-7"})
	require.NoError(t, err)
	assert.Equal(t, "#orders", rendered["channel"])
	assert.Equal(t, "Order ORD-7 placed", rendered["messageTemplate"])

	_, err = RenderConfig(config, models.TriggerData{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config messageTemplate")
}
