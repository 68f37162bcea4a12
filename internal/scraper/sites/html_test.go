package sites

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHtmlToText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"пустая строка", "", ""},
		{"двойное экранирование", "&amp;lt;b&amp;gt;Stand Up&amp;lt;/b&amp;gt;", "Stand Up"},
		{"пробелы внутри сохраняются", "<p> Klasik  trajedi </p>", " Klasik  trajedi "},
		{"несколько абзацев", "<p>Bir</p><p>İki</p>", "Birİki"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, htmlToText(tt.in))
		})
	}
}

func TestParagraphsToText(t *testing.T) {
	assert.Equal(t, "Bir\n<b>İki</b>\n", paragraphsToText("<p>Bir</p><p><b>İki</b></p>"))
}
