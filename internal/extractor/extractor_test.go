package extractor

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractSectionBothRegions(t *testing.T) {
	page := `<html><body>
		<div class="representation_infos">Beta</div>
		<div class="js-tabs other">Alpha</div>
	</body></html>`

	text, err := New().ExtractSection(page)
	require.NoError(t, err)
	assert.Equal(t, "Alpha\nBeta", text)
}

func TestExtractSectionNoRegions(t *testing.T) {
	text, err := New().ExtractSection(`<html><body><p>Rien ici</p></body></html>`)
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestExtractSectionOnlyPrimaryKeepsTrailingNewline(t *testing.T) {
	text, err := New().ExtractSection(`<div class="js-tabs"><p>Alpha</p></div>`)
	require.NoError(t, err)
	assert.Equal(t, "Alpha\n", text)
}

func TestExtractSectionOnlySecondary(t *testing.T) {
	text, err := New().ExtractSection(`<div class="representation_infos"><p>Ambassade</p><p>Tél. 01</p></div>`)
	require.NoError(t, err)
	assert.Equal(t, "Ambassade\nTél. 01", text)
}

func TestExtractSectionUsesFirstMatch(t *testing.T) {
	page := `<div class="js-tabs">first</div><div class="js-tabs">second</div>`
	text, err := New().ExtractSection(page)
	require.NoError(t, err)
	assert.Equal(t, "first\n", text)
}

func TestTextSkipsScriptsAndBlankNodes(t *testing.T) {
	page := `<div id="r">
		<h2>  Sécurité  </h2>
		<script>var x = 1;</script>
		<style>.a{}</style>
		<!-- note -->
		<ul><li>Zone rouge</li><li>
			Zone orange
		</li></ul>
	</div>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	require.NoError(t, err)

	assert.Equal(t, "Sécurité\nZone rouge\nZone orange", Text(doc.Find("#r")))
}

func TestCustomSelectors(t *testing.T) {
	e := &Extractor{Primary: "section.a", Secondary: "section.b"}
	text, err := e.ExtractSection(`<section class="b">B</section><section class="a">A</section>`)
	require.NoError(t, err)
	assert.Equal(t, "A\nB", text)
}
