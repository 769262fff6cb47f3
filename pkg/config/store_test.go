package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntryStoreLifecycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "entry.yaml")

	store, err := OpenEntryStore(path)
	require.NoError(t, err)

	_, ok := store.Entry()
	assert.False(t, ok)
	assert.ErrorIs(t, store.UpdateOptions(context.Background(), EntryOptions{}), ErrNoEntry)

	entry := Entry{Title: EntryTitle, Data: EntryData{APIKey: "key", StopIDs: []string{"U1Z1P"}}}
	require.NoError(t, store.Create(entry))

	var notified []Entry
	remove := store.AddUpdateListener(func(ctx context.Context, entry Entry) error {
		notified = append(notified, entry)
		return nil
	})

	options := EntryOptions{StopIDs: []string{"U2Z1P"}, MinutesBefore: intPointer(-10), MinutesAfter: intPointer(30)}
	require.NoError(t, store.UpdateOptions(context.Background(), options))
	require.Len(t, notified, 1)
	assert.Equal(t, options, notified[0].Options)

	reopened, err := OpenEntryStore(path)
	require.NoError(t, err)
	persisted, ok := reopened.Entry()
	require.True(t, ok)
	assert.Equal(t, "key", persisted.Data.APIKey)
	assert.Equal(t, []string{"U2Z1P"}, persisted.RuntimeData().StopIDs)
	assert.Equal(t, -10, persisted.RuntimeData().MinutesBefore)

	remove()
	require.NoError(t, store.UpdateOptions(context.Background(), EntryOptions{}))
	assert.Len(t, notified, 1)
}

func TestEntryStoreListenerErrors(t *testing.T) {
	store, err := OpenEntryStore(filepath.Join(t.TempDir(), "entry.yaml"))
	require.NoError(t, err)
	require.NoError(t, store.Create(Entry{Data: EntryData{APIKey: "key", StopIDs: []string{"U1Z1P"}}}))

	reloadErr := errors.New("reload failed")
	store.AddUpdateListener(func(ctx context.Context, entry Entry) error {
		return reloadErr
	})

	assert.ErrorIs(t, store.UpdateOptions(context.Background(), EntryOptions{}), reloadErr)
}

func TestOpenEntryStoreInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "entry.yaml")
	require.NoError(t, os.WriteFile(path, []byte("data: [[["), 0o600))

	_, err := OpenEntryStore(path)
	assert.Error(t, err)
}

func TestEntryRuntimeData(t *testing.T) {
	entry := Entry{Data: EntryData{APIKey: "key", StopIDs: []string{"U1Z1P", " U1Z1P", "U2Z1P"}}}

	runtimeData := entry.RuntimeData()
	assert.Equal(t, RuntimeData{
		APIKey:        "key",
		StopIDs:       []string{"U1Z1P", "U2Z1P"},
		MinutesBefore: DefaultMinutesBefore,
		MinutesAfter:  DefaultMinutesAfter,
	}, runtimeData)
}

func TestEntryRuntimeDataOptionsOverlay(t *testing.T) {
	minutesAfter := 0
	minutesBefore := 20
	entry := Entry{
		Data: EntryData{APIKey: "key", StopIDs: []string{"U1Z1P", "U2Z1P", "U3Z1P"}},
		Options: EntryOptions{
			StopIDs:       []string{"U4Z1P"},
			MinutesBefore: &minutesBefore,
			MinutesAfter:  &minutesAfter,
		},
	}

	assert.Equal(t, RuntimeData{
		APIKey:        "key",
		StopIDs:       []string{"U4Z1P"},
		MinutesBefore: 20,
		MinutesAfter:  0,
	}, entry.RuntimeData())
	assert.Equal(t, []string{"U1Z1P", "U2Z1P", "U3Z1P"}, entry.Data.StopIDs)

	entry.Options = EntryOptions{StopIDs: []string{}}
	assert.Equal(t, RuntimeData{
		APIKey:        "key",
		StopIDs:       []string{"U1Z1P", "U2Z1P", "U3Z1P"},
		MinutesBefore: DefaultMinutesBefore,
		MinutesAfter:  DefaultMinutesAfter,
	}, entry.RuntimeData())
}
