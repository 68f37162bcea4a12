package sites

import (
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// htmlToText снимает двойное html-экранирование и оставляет только текст документа.
// Пробелы внутри текста сохраняются как есть.
func htmlToText(s string) string {
	if s == "" {
		return ""
	}

	unescaped := html.UnescapeString(html.UnescapeString(s))

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(unescaped))
	if err != nil {
		return unescaped
	}

	return doc.Text()
}

// paragraphsToText убирает <p> и превращает </p> в перевод строки, остальную разметку не трогает.
func paragraphsToText(s string) string {
	return strings.NewReplacer("<p>", "", "</p>", "\n").Replace(s)
}
