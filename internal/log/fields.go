package log

// Canonical field name constants for structured logging.
const (
	FieldComponent = "component"
	FieldMachine   = "machine"
	FieldMachineID = "machine_id"

	// State fields
	FieldState    = "state"
	FieldOldState = "old_state"
	FieldNewState = "new_state"
	FieldTarget   = "target"

	// Fault fields
	FieldFault = "fault"
	FieldFile  = "file"
	FieldLine  = "line"
)
