// Package module defines the two-phase module contract (evaluate/dispatch),
// the task request/response shapes, and the closed Field enumeration that
// drives Modify sub-action selection.
package module

import "fmt"

// Field names what may change on a resource. It drives which sub-action a
// Modify dispatch takes.
type Field string

const (
	FieldOwner   Field = "owner"
	FieldGroup   Field = "group"
	FieldMode    Field = "mode"
	FieldContent Field = "content"
	FieldVersion Field = "version"
	FieldBranch  Field = "branch"
	FieldUid     Field = "uid"
	FieldGid     Field = "gid"
	FieldUsers   Field = "users"
	FieldGroups  Field = "groups"
	FieldGecos   Field = "gecos"
	FieldShell   Field = "shell"
	FieldEnable  Field = "enable"
	FieldDisable Field = "disable"
	FieldStart   Field = "start"
	FieldStop    Field = "stop"
	FieldRestart Field = "restart"
)

// RequestKind is the discriminant of a TaskRequest.
type RequestKind string

const (
	Validate RequestKind = "validate"
	Query    RequestKind = "query"
	Create   RequestKind = "create"
	Modify   RequestKind = "modify"
	Remove   RequestKind = "remove"
	Execute  RequestKind = "execute"
	Passive  RequestKind = "passive"
)

// SudoSpec carries the optional sudo details validated during the Validate leg.
type SudoSpec struct {
	User     string
	Template string
}

// Request is a discriminated value describing what the FSM is asking the
// module to do for one (host, task) pair.
type Request struct {
	Kind RequestKind
	// Changes carries the change-set computed by Query verbatim into Modify.
	Changes []Field
	// Sudo is only populated for Kind == Validate.
	Sudo *SudoSpec
}

// Status is the outcome reported by a module's dispatch.
type Status string

const (
	IsMatched          Status = "IsMatched"
	IsSkipped          Status = "IsSkipped"
	IsCreated          Status = "IsCreated"
	IsModified         Status = "IsModified"
	IsRemoved          Status = "IsRemoved"
	IsExecuted         Status = "IsExecuted"
	IsPassive          Status = "IsPassive"
	NeedsCreation      Status = "NeedsCreation"
	NeedsModification  Status = "NeedsModification"
	NeedsRemoval       Status = "NeedsRemoval"
	NeedsExecution     Status = "NeedsExecution"
	NeedsPassive       Status = "NeedsPassive"
	Failed             Status = "Failed"
)

// CommandResult is the optional `{cmd, stdout, rc}` tuple a dispatch may
// attach to its Response when it ran something over a connection.
type CommandResult struct {
	Cmd    string
	Stdout string
	Rc     int
}

// Response is what a module's dispatch returns for one request.
type Response struct {
	Status  Status
	Changes []Field
	Message string
	Command *CommandResult
	With    PreLogic
	And     PostLogic
}

// PreLogic is the templated form of a task's `with` block.
type PreLogic struct {
	Cond      string
	Sudo      *SudoSpec
	Subscribe string
}

// PostLogic is the templated form of a task's `and` block.
type PostLogic struct {
	ChangedWhen  string
	FailedWhen   string
	Delay        int
	Retry        int
	IgnoreErrors bool
	Notify       string
	Save         string
}

// legalStatus enumerates, per request kind, the statuses a dispatch may
// legally return (Failed is always legal and is checked separately).
var legalStatus = map[RequestKind]map[Status]bool{
	Validate: {IsMatched: true, IsSkipped: true},
	Query: {
		IsMatched: true, NeedsCreation: true, NeedsModification: true,
		NeedsRemoval: true, NeedsExecution: true, NeedsPassive: true,
	},
	Create:  {IsCreated: true},
	Modify:  {IsModified: true},
	Remove:  {IsRemoved: true},
	Execute: {IsExecuted: true},
	Passive: {IsPassive: true},
}

// ContractViolationError is the distinct fatal class raised when a module
// returns a status that is illegal for the request kind it was given — a
// programming error in the module, not a recoverable host failure.
type ContractViolationError struct {
	Module string
	Kind   RequestKind
	Status Status
}

func (e *ContractViolationError) Error() string {
	return fmt.Sprintf("module %q returned illegal status %q for request kind %q", e.Module, e.Status, e.Kind)
}

// CheckLegal validates that resp.Status is legal for kind, or Failed.
// Returns a *ContractViolationError when it is not.
func CheckLegal(moduleName string, kind RequestKind, resp *Response) error {
	if resp.Status == Failed {
		return nil
	}
	if legalStatus[kind][resp.Status] {
		return nil
	}
	return &ContractViolationError{Module: moduleName, Kind: kind, Status: resp.Status}
}
