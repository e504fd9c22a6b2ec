package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/dispatch"
	"github.com/spec-kit/helpdesk/internal/repository"
	"github.com/spec-kit/helpdesk/internal/service"
)

// memoryBackend keeps one store across invocations, like a database would.
func memoryBackend() (Backend, *int) {
	store := repository.NewMemoryStore()
	svc := service.NewHelpdeskService(service.HelpdeskDependencies{Store: store})
	migrations := 0
	return Backend{
		Open: func(context.Context, string) (dispatch.Handlers, func(), error) {
			return svc, func() {}, nil
		},
		Migrate: func(context.Context, string) (int, error) {
			migrations++
			return 1, nil
		},
	}, &migrations
}

func run(t *testing.T, backend Backend, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand(backend)
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--dsn", "postgres://test"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestTicketCommands(t *testing.T) {
	backend, _ := memoryBackend()

	out, err := run(t, backend, "ticket", "create", "--title", "Printer broken", "--description", "Office printer jams on page 2", "--priority", "high")
	require.NoError(t, err)
	var created idResult
	require.NoError(t, json.Unmarshal([]byte(out), &created))
	assert.Equal(t, int64(1), created.ID)

	_, err = run(t, backend, "comment", "add", "1", "--text", "Restarted it", "--author", "alice")
	require.NoError(t, err)

	_, err = run(t, backend, "ticket", "status", "1", "resolved")
	require.NoError(t, err)

	out, err = run(t, backend, "ticket", "show", "1")
	require.NoError(t, err)
	var detail dto.TicketDetail
	require.NoError(t, json.Unmarshal([]byte(out), &detail))
	assert.Equal(t, "Resolved", string(detail.Status))
	assert.Equal(t, "High", string(detail.Priority))
	require.Len(t, detail.Comments, 1)

	out, err = run(t, backend, "--output", "yaml", "ticket", "list", "--status", "Resolved")
	require.NoError(t, err)
	var summaries []dto.TicketSummary
	require.NoError(t, yaml.Unmarshal([]byte(out), &summaries))
	require.Len(t, summaries, 1)
	assert.Equal(t, "Printer broken", summaries[0].Title)

	_, err = run(t, backend, "ticket", "delete", "1")
	require.NoError(t, err)

	out, err = run(t, backend, "comment", "list", "1")
	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)
}

func TestNotFoundExitsWithError(t *testing.T) {
	backend, _ := memoryBackend()

	_, err := run(t, backend, "ticket", "show", "7")
	assert.EqualError(t, err, "ticket 7 not found")

	_, err = run(t, backend, "comment", "delete", "7")
	assert.EqualError(t, err, "comment 7 not found")

	_, err = run(t, backend, "comment", "add", "7", "--text", "hi", "--author", "bob")
	assert.ErrorContains(t, err, "ticket 7 does not exist")
}

func TestInputValidation(t *testing.T) {
	backend, _ := memoryBackend()

	_, err := run(t, backend, "ticket", "create", "--title", "ab", "--description", "short")
	assert.Error(t, err)

	_, err = run(t, backend, "ticket", "status", "1", "Closed")
	assert.Error(t, err)

	_, err = run(t, backend, "ticket", "show", "abc")
	assert.EqualError(t, err, `invalid id "abc"`)

	_, err = run(t, backend, "--output", "xml", "ticket", "list")
	assert.Error(t, err)
}

func TestMigrateAndMissingDSN(t *testing.T) {
	backend, migrations := memoryBackend()

	out, err := run(t, backend, "migrate")
	require.NoError(t, err)
	assert.JSONEq(t, `{"migrations": 1}`, out)
	assert.Equal(t, 1, *migrations)

	cmd := NewRootCommand(backend)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--dsn", "", "ticket", "list"})
	assert.ErrorContains(t, cmd.Execute(), "no database configured")
}

func TestOpenFailureIsReported(t *testing.T) {
	backend := Backend{
		Open: func(context.Context, string) (dispatch.Handlers, func(), error) {
			return nil, nil, errors.New("connection refused")
		},
	}
	_, err := run(t, backend, "ticket", "list")
	assert.ErrorContains(t, err, "connection refused")
}
