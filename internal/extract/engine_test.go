package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Resolve_ReturnsKthSelectorWhenOnlyKthMatches(t *testing.T) {
	doc, err := Document(`<div><span class="third">value-3</span></div>`)
	assert.NoError(t, err)

	field := Field{
		Name:      "probe",
		Selectors: []string{".first", ".second", ".third", ".fourth"},
	}

	value, ok := Resolve(doc.Selection, field)
	assert.True(t, ok)
	assert.Equal(t, "value-3", value)
}

func Test_Resolve_SkipsEmptyEarlierMatches(t *testing.T) {
	doc, err := Document(`<div><span class="first">   </span><span class="second">real</span></div>`)
	assert.NoError(t, err)

	field := Field{Selectors: []string{".first", ".second"}}

	value, ok := Resolve(doc.Selection, field)
	assert.True(t, ok)
	assert.Equal(t, "real", value)
}

func Test_Resolve_ExhaustedWaterfallReportsAbsent(t *testing.T) {
	doc, err := Document(`<div><span class="other">x</span></div>`)
	assert.NoError(t, err)

	field := Field{Selectors: []string{".first", ".second"}}

	value, ok := Resolve(doc.Selection, field)
	assert.False(t, ok)
	assert.Equal(t, "", value)
}

func Test_Resolve_AttributeExtraction(t *testing.T) {
	doc, err := Document(`<div><a class="link" href="/internship/detail/99">view</a></div>`)
	assert.NoError(t, err)

	field := Field{Selectors: []string{".link"}, Attr: "href"}

	value, ok := Resolve(doc.Selection, field)
	assert.True(t, ok)
	assert.Equal(t, "/internship/detail/99", value)
}

func Test_ResolveOrSelf_FallsBackToOwnText(t *testing.T) {
	doc, err := Document(`<div class="msg">plain words</div>`)
	assert.NoError(t, err)
	msg := doc.Find(".msg")

	field := Field{Selectors: []string{".message-text", ".msg-content"}}

	value, ok := ResolveOrSelf(msg, field)
	assert.True(t, ok)
	assert.Equal(t, "plain words", value)
}

func Test_ResolveAll_CollectsFirstMatchingSelectorOnly(t *testing.T) {
	doc, err := Document(`
		<div>
			<span class="tag">Go</span>
			<span class="tag">SQL</span>
			<span class="alt-tag">ignored</span>
		</div>`)
	assert.NoError(t, err)

	field := Field{Selectors: []string{".missing", ".tag", ".alt-tag"}}

	values := ResolveAll(doc.Selection, field)
	assert.Equal(t, []string{"Go", "SQL"}, values)
}

func Test_CollectAll_UnionsSelectorsAndDeduplicates(t *testing.T) {
	doc, err := Document(`
		<div>
			<div class="attachment"><a href="/files/resume.pdf">resume</a></div>
			<a class="file-link" href="/files/offer.pdf">offer</a>
			<a class="file-link" href="/files/resume.pdf">resume again</a>
		</div>`)
	assert.NoError(t, err)

	field := Field{Selectors: []string{".attachment a", ".file-link"}, Attr: "href"}

	values := CollectAll(doc.Selection, field)
	assert.Equal(t, []string{"/files/resume.pdf", "/files/offer.pdf"}, values)
}

func Test_FirstMatch_FindsContainerSet(t *testing.T) {
	doc, err := Document(`
		<div class="individual_internship">a</div>
		<div class="individual_internship">b</div>`)
	assert.NoError(t, err)

	matches, ok := FirstMatch(doc.Selection, ".internship_meta", ".individual_internship")
	assert.True(t, ok)
	assert.Equal(t, 2, matches.Length())

	_, ok = FirstMatch(doc.Selection, ".absent", ".also-absent")
	assert.False(t, ok)
}
