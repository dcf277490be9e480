package components

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/clashoffists/internal/model"
)

func render(t *testing.T, c templ.Component) (string, *goquery.Document) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(buf.String()))
	require.NoError(t, err)
	return buf.String(), doc
}

func TestOnlineList_EscapesUserFields(t *testing.T) {
	users := []*model.User{{
		ID:       `id" onclick="steal()`,
		Username: `<script>alert(1)</script>`,
	}}

	html, doc := render(t, OnlineList(users))

	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
	assert.Equal(t, 0, doc.Find("[onclick]").Length())
	assert.Equal(t, `<script>alert(1)</script>`, doc.Find(".username").Text())
	id, ok := doc.Find("li[data-user-id]").Attr("data-user-id")
	require.True(t, ok)
	assert.Equal(t, `id" onclick="steal()`, id)
}

func TestOnlineList_Empty(t *testing.T) {
	_, doc := render(t, OnlineList(nil))
	assert.Equal(t, 1, doc.Find("li.empty").Length())
}

func TestHistory_EscapesResultClass(t *testing.T) {
	history := []model.RoundRecord{{
		Round:          1,
		PlayerChoice:   model.MoveRock,
		ComputerChoice: model.MoveScissors,
		Result:         model.Outcome(`win" onmouseover="steal()`),
	}}

	html, doc := render(t, History(history))

	assert.NotContains(t, html, `" onmouseover="`)
	assert.Equal(t, 0, doc.Find("[onmouseover]").Length())
}

func TestHistory_MarksOutcome(t *testing.T) {
	history := []model.RoundRecord{
		{Round: 1, PlayerChoice: model.MoveRock, ComputerChoice: model.MoveScissors, Result: model.OutcomeWin},
		{Round: 2, PlayerChoice: model.MovePaper, ComputerChoice: model.MoveScissors, Result: model.OutcomeLose},
	}

	_, doc := render(t, History(history))

	items := doc.Find(".history-item")
	require.Equal(t, 2, items.Length())
	assert.Equal(t, "You won with rock vs scissors", items.Eq(0).Find("span.win").Text())
	assert.Equal(t, "Computer won with scissors vs paper", items.Eq(1).Find("span.lose").Text())
}

func TestChoiceButtons(t *testing.T) {
	_, doc := render(t, ChoiceButtons())

	buttons := doc.Find(".choice-btn")
	require.Equal(t, len(model.Moves), buttons.Length())
	for i, m := range model.Moves {
		choice, _ := buttons.Eq(i).Attr("data-choice")
		assert.Equal(t, string(m), choice)
	}
}
