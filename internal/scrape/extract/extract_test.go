package extract

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

var blogRules = KeywordExtractor{
	Nodes: "p",
	Image: "div.se-main-container img",
	Rules: []Rule{
		{Field: Price, Any: []string{"차량가격"}},
		{Field: Year, Any: []string{"연식", "년식"}},
		{Field: Mileage, Any: []string{"적산거리", "주행거리"}},
	},
}

func TestKeywordExtractor(t *testing.T) {
	doc := mustDoc(t, `<html><body>
<div class="se-main-container"><img data-src="https://img/1.jpg"></div>
<p>차량가격 : 15,000,000원</p>
<p>연식2023년</p>
<p>주행거리: 3,200km</p>
</body></html>`)

	got := blogRules.Extract(doc)
	assert.Equal(t, "15,000,000원", got.Price)
	assert.Equal(t, "2023년", got.Year)
	assert.Equal(t, "3,200km", got.Mileage)
	assert.Equal(t, "https://img/1.jpg", got.ImageURL)
}

func TestKeywordExtractorFirstMatchWins(t *testing.T) {
	doc := mustDoc(t, `<p>차량가격: 100만원</p><p>차량가격: 200만원 (협의)</p>`)

	assert.Equal(t, "100만원", blogRules.Extract(doc).Price)

	last := blogRules
	last.Policy = LastMatchWins
	assert.Equal(t, "200만원 (협의)", last.Extract(doc).Price)
}

func TestKeywordExtractorInnermostNode(t *testing.T) {
	k := blogRules
	k.Nodes = "p, span, div"
	doc := mustDoc(t, `<div class="se-main-container"><p>차량가격 : 3,500,000원</p><p>연식 : 2021년</p><p>주행거리: <span>5,000km</span></p></div>`)

	got := k.Extract(doc)
	assert.Equal(t, "3,500,000원", got.Price)
	assert.Equal(t, "2021년", got.Year)
	assert.Equal(t, "5,000km", got.Mileage)
}

func TestKeywordExtractorSplitLabelRuns(t *testing.T) {
	k := blogRules
	k.Nodes = "p, span, div"
	doc := mustDoc(t, `<div class="se-main-container">
<p><span><b>연식</b></span><span> 2019년</span></p>
<p><span>적산거리</span><span>12,000km</span></p>
<p>차량가격 : 250만원</p></div>`)

	got := k.Extract(doc)
	assert.Equal(t, "250만원", got.Price)
	assert.Equal(t, "2019년", got.Year)
	assert.Equal(t, "12,000km", got.Mileage)
}

func TestKeywordExtractorLabelOnlyNodeDoesNotClaimField(t *testing.T) {
	// a bare label line must not block a later line that carries the value
	doc := mustDoc(t, `<p>연식 :</p><p>연식 2020년</p>`)
	assert.Equal(t, "2020년", blogRules.Extract(doc).Year)

	last := blogRules
	last.Policy = LastMatchWins
	doc = mustDoc(t, `<p>연식 2020년</p><p>연식</p>`)
	assert.Equal(t, "2020년", last.Extract(doc).Year)
}

func TestKeywordExtractorExplicitLabel(t *testing.T) {
	k := KeywordExtractor{
		Nodes: "p",
		Rules: []Rule{{Field: Price, Any: []string{"판매 희망가격", "판매희망가격"}, Label: "희망가격"}},
	}
	// no colon: only the label is stripped, keyword prefix remains
	assert.Equal(t, "판매 350만원", k.Extract(mustDoc(t, `<p>판매 희망가격 350만원</p>`)).Price)
}

func TestKeywordExtractorEmptyPage(t *testing.T) {
	got := blogRules.Extract(mustDoc(t, `<html><body><p>안녕하세요</p></body></html>`))
	assert.Empty(t, got.Price)
	assert.Empty(t, got.Year)
	assert.Empty(t, got.Mileage)
	assert.Empty(t, got.ImageURL)
}

func TestLabelExtractor(t *testing.T) {
	l := LabelExtractor{
		Labels: map[Field][]string{
			Price:   {"판매가", "판매금액", "가격"},
			Year:    {"연식", "년식"},
			Mileage: {"주행거리", "적산거리", "키로수"},
		},
		Image:   ".thumnail img",
		BaseURL: "http://joongum.co.kr",
	}
	doc := mustDoc(t, `<html><body>
<div class="thumnail"><img src="../data/item/1.jpg"></div>
<table>
<tr><th>판매가</th><td>4,500,000원</td></tr>
<tr><th>연식</th><td>2020년</td></tr>
</table>
<p>키로수 8,000km</p>
</body></html>`)

	got := l.Extract(doc)
	assert.Equal(t, "4,500,000원", got.Price)
	assert.Equal(t, "2020년", got.Year)
	assert.Equal(t, "8,000km", got.Mileage)
	assert.Equal(t, "http://joongum.co.kr/data/item/1.jpg", got.ImageURL)
}

func TestFixImageURL(t *testing.T) {
	assert.Equal(t, "http://joongum.co.kr/data/a.jpg", FixImageURL("http://joongum.co.kr", "/../data/a.jpg"))
	assert.Equal(t, "https://cdn/x.jpg", FixImageURL("http://joongum.co.kr", "https://cdn/x.jpg"))
	assert.Equal(t, "", FixImageURL("http://joongum.co.kr", " "))
}
