package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/scorepad/internal/factory"
	"github.com/mcoot/scorepad/internal/model"
)

type ReplSuite struct {
	suite.Suite
	app  *factory.TestApp
	ctx  context.Context
	game *model.Game
}

func TestReplSuite(t *testing.T) {
	suite.Run(t, new(ReplSuite))
}

func (s *ReplSuite) SetupTest() {
	s.app = factory.NewTestApp()
	s.ctx = context.Background()

	game, err := s.app.Repository.CreateGame(s.ctx, "Rummy", []string{"Ann", "Bob"})
	s.Require().NoError(err)
	s.game = game
}

// runScript begins a session and feeds it the given input lines
func (s *ReplSuite) runScript(format string, lines ...string) (*repl, string) {
	view, err := s.app.Play.Begin(s.ctx, s.game.ID, nil, "")
	s.Require().NoError(err)

	var out bytes.Buffer
	r := &repl{
		play: s.app.Play,
		id:   view.ID,
		in:   strings.NewReader(strings.Join(lines, "\n") + "\n"),
		out:  NewOutput(format, &out),
	}
	s.Require().NoError(r.run(s.ctx))
	return r, out.String()
}

func (s *ReplSuite) TestScoreAndFinishSavesSession() {
	_, out := s.runScript("text",
		"score 1 1 10",
		"score 1 2 7",
		"round",
		"score 2 2 12abc",
		"finish",
	)

	s.Contains(out, "Winner: Bob")
	s.Contains(out, "Bob: 19")
	s.Contains(out, "Ann: 10")

	entries, err := s.app.Repository.ListSessions(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal([][]int{{10, 7}, {0, 12}}, entries[0].Session.Rounds)
	s.Empty(s.app.Play.Active())
}

func (s *ReplSuite) TestTieIsAnnounced() {
	_, out := s.runScript("text", "score 1 1 4", "score 1 2 4", "finish")
	s.Contains(out, "Winner: Ann & Bob")
}

func (s *ReplSuite) TestEndOfInputDiscardsSession() {
	_, out := s.runScript("text", "score 1 1 5")

	s.Contains(out, "session discarded")
	s.Empty(s.app.Play.Active())
	entries, err := s.app.Repository.ListSessions(s.ctx)
	s.Require().NoError(err)
	s.Empty(entries)
}

func (s *ReplSuite) TestCancelDiscardsSession() {
	_, out := s.runScript("text", "score 1 1 5", "cancel", "score 1 1 9")

	s.Contains(out, "Session discarded")
	s.NotContains(out, "Input closed")
	entries, err := s.app.Repository.ListSessions(s.ctx)
	s.Require().NoError(err)
	s.Empty(entries)
}

func (s *ReplSuite) TestErrorsDoNotEndTheSession() {
	_, out := s.runScript("text",
		"bogus",
		"score 1",
		"score 0 1 5",
		"score 3 1 5",
		"finish",
	)

	s.Contains(out, `unknown command "bogus"`)
	s.Contains(out, "usage: score ROUND PLAYER VALUE")
	s.Contains(out, "round must be a number from 1")
	s.Contains(out, model.ErrInvalidPosition.Error())
	s.Contains(out, "Winner: Ann & Bob")
}

func (s *ReplSuite) TestTotalsAndShow() {
	_, out := s.runScript("text", "score 1 2 3", "totals", "show", "cancel")

	s.Contains(out, "Ann: 0\nBob: 3\n")
	s.Contains(out, "PLAYER")
	s.Contains(out, "TOTAL")
}

func (s *ReplSuite) TestJSONOutputHasNoPrompt() {
	_, out := s.runScript("json", "totals", "cancel")

	s.NotContains(out, "> ")
	s.Contains(out, `"Ann": 0`)
}

func (s *ReplSuite) TestHelp() {
	_, out := s.runScript("text", "help", "cancel")
	s.Contains(out, "score R P V")
}

func TestPosition(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{"1", 0, false},
		{"4", 3, false},
		{"0", 0, true},
		{"-2", 0, true},
		{"x", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := position(tt.raw, "round")
			if tt.wantErr {
				if err == nil {
					t.Fatalf("position(%q) expected error", tt.raw)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Fatalf("position(%q) = %d, %v; want %d", tt.raw, got, err, tt.want)
			}
		})
	}
}
