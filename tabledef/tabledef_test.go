package tabledef

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/librescoot/tablefsm"
)

const motorTable = `
machine: motor
states: [Idle, Stop, Start, ChangeSpeed]
events:
  SetSpeed: [Start, CANNOT_HAPPEN, ChangeSpeed, ChangeSpeed]
  Halt: [IGNORED, CANNOT_HAPPEN, Stop, Stop]
`

func TestParse_ResolvesNamesAndSentinels(t *testing.T) {
	tbl, err := Parse([]byte(motorTable))
	require.NoError(t, err)

	assert.Equal(t, "motor", tbl.Machine())
	assert.Equal(t, []string{"Halt", "SetSpeed"}, tbl.Events())

	setSpeed, err := tbl.Event("SetSpeed")
	require.NoError(t, err)
	want := tablefsm.TransitionMap{2, tablefsm.CannotHappen, 3, 3}
	if diff := cmp.Diff(want, setSpeed); diff != "" {
		t.Errorf("SetSpeed map mismatch (-want +got):\n%s", diff)
	}

	halt, err := tbl.Event("Halt")
	require.NoError(t, err)
	want = tablefsm.TransitionMap{tablefsm.EventIgnored, tablefsm.CannotHappen, 1, 1}
	if diff := cmp.Diff(want, halt); diff != "" {
		t.Errorf("Halt map mismatch (-want +got):\n%s", diff)
	}

	id, ok := tbl.State("ChangeSpeed")
	assert.True(t, ok)
	assert.Equal(t, tablefsm.StateID(3), id)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr error
	}{
		{
			name:    "size mismatch",
			doc:     "states: [A, B]\nevents:\n  Go: [B]\n",
			wantErr: tablefsm.ErrTableSize,
		},
		{
			name:    "unknown target",
			doc:     "states: [A, B]\nevents:\n  Go: [B, C]\n",
			wantErr: ErrUnknownState,
		},
		{
			name:    "duplicate state",
			doc:     "states: [A, A]\n",
			wantErr: ErrDuplicateState,
		},
		{
			name:    "no states",
			doc:     "machine: empty\n",
			wantErr: tablefsm.ErrMaxStates,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParse_Strict(t *testing.T) {
	_, err := Parse([]byte("states: [A]\nguards: {}\n"))
	require.Error(t, err, "unknown fields must be rejected")

	_, err = Parse([]byte("states: [A]\n---\nstates: [B]\n"))
	require.Error(t, err, "multiple documents must be rejected")

	_, err = Parse(nil)
	require.Error(t, err)

	_, err = Parse([]byte("states: [IGNORED]\n"))
	require.Error(t, err, "sentinel spellings are reserved")
}

func TestCheckStates(t *testing.T) {
	tbl, err := Parse([]byte(motorTable))
	require.NoError(t, err)

	require.NoError(t, tbl.CheckStates("Idle", "Stop", "Start", "ChangeSpeed"))
	assert.ErrorIs(t, tbl.CheckStates("Idle", "Start", "Stop", "ChangeSpeed"), ErrStateOrder)
	assert.ErrorIs(t, tbl.CheckStates("Idle"), ErrStateOrder)
}

func TestEvent_Unknown(t *testing.T) {
	tbl, err := Parse([]byte(motorTable))
	require.NoError(t, err)

	_, err = tbl.Event("Reverse")
	assert.ErrorIs(t, err, ErrUnknownEvent)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "motor.yaml")
	require.NoError(t, os.WriteFile(path, []byte(motorTable), 0o600))

	tbl, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Idle", "Stop", "Start", "ChangeSpeed"}, tbl.States())

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
