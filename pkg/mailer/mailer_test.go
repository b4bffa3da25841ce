package mailer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/campus-resource-tracker/config"
	"github.com/oksasatya/campus-resource-tracker/pkg/mailer"
	tpl "github.com/oksasatya/campus-resource-tracker/pkg/mailer/templates"
)

func TestEmailJob_RenderWelcome(t *testing.T) {
	cfg := &config.Config{AppName: "Campus Resources", AppURL: "https://map.example.edu"}
	job := mailer.EmailJob{
		To:       "alice@example.com",
		Template: tpl.Welcome,
		Data:     tpl.NewWelcomeData(cfg, "alice", "alice@example.com"),
	}

	msg, err := job.Render()
	require.NoError(t, err)
	assert.Equal(t, "Welcome to Campus Resources, alice", msg.Subject)
	assert.Contains(t, msg.Text, "https://map.example.edu")
	assert.Contains(t, msg.HTML, "Welcome, alice")
}

func TestEmailJob_RenderResourceRated(t *testing.T) {
	cfg := &config.Config{AppURL: "https://map.example.edu/"}
	data := tpl.NewResourceRatedData(cfg, "alice", "alice@example.com",
		tpl.WithResource("r1", "Main Library Toilet", "Toilet", "Main Library"),
		tpl.WithRating("bob", 4, "clean <3"),
		tpl.WithAggregate(4.5, 2),
	)

	msg, err := mailer.EmailJob{To: "alice@example.com", Template: tpl.ResourceRated, Data: data}.Render()
	require.NoError(t, err)
	assert.Equal(t, "bob rated Main Library Toilet 4/5", msg.Subject)
	assert.Contains(t, msg.Text, "★★★★☆")
	assert.Contains(t, msg.Text, "averages 4.5 from 2")
	assert.Contains(t, msg.Text, "https://map.example.edu/resources/r1")
	assert.Contains(t, msg.HTML, "clean &lt;3")
}

func TestEmailJob_RenderRejectsEmptyJobs(t *testing.T) {
	_, err := mailer.EmailJob{Subject: "x", Text: "y"}.Render()
	assert.ErrorIs(t, err, mailer.ErrEmptyJob)

	_, err = mailer.EmailJob{To: "a@b.co"}.Render()
	assert.ErrorIs(t, err, mailer.ErrEmptyJob)

	_, err = mailer.EmailJob{To: "a@b.co", Template: "missing"}.Render()
	assert.Error(t, err)
}
