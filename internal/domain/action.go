package domain

import "fmt"

// Action is a local input relayed to the remote game engine.
type Action string

const (
	ActionMoveLeft  Action = "MOVE_LEFT"
	ActionMoveRight Action = "MOVE_RIGHT"
	ActionRotate    Action = "ROTATE"
	ActionSoftDrop  Action = "SOFT_DROP"
	ActionHardDrop  Action = "HARD_DROP"
)

func (a Action) Valid() bool {
	switch a {
	case ActionMoveLeft, ActionMoveRight, ActionRotate, ActionSoftDrop, ActionHardDrop:
		return true
	}
	return false
}

// ActionRejectedError carries the game service's reason for refusing an
// action. It is dismissible UI material, never fatal.
type ActionRejectedError struct {
	Action  Action
	Message string
}

func (e *ActionRejectedError) Error() string {
	return fmt.Sprintf("action %s rejected: %s", e.Action, e.Message)
}
