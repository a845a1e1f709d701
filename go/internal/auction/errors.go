package auction

import "fmt"

// Code tags a caller-facing failure.
type Code string

const (
	CodeRoomExists          Code = "RoomExists"
	CodeInvalidCapacity     Code = "InvalidCapacity"
	CodeRoomNotFound        Code = "RoomNotFound"
	CodeRoomFull            Code = "RoomFull"
	CodeAlreadyMember       Code = "AlreadyMember"
	CodeNotHost             Code = "NotHost"
	CodeAlreadyStarted      Code = "AlreadyStarted"
	CodeNotEnoughMembers    Code = "NotEnoughMembers"
	CodeNoActiveAuction     Code = "NoActiveAuction"
	CodeNotAMember          Code = "NotAMember"
	CodeAlreadySkipped      Code = "AlreadySkipped"
	CodeTeamFull            Code = "TeamFull"
	CodeInvalidFirstBid     Code = "InvalidFirstBid"
	CodeBidTooLow           Code = "BidTooLow"
	CodeInsufficientBalance Code = "InsufficientBalance"
)

// Error is a domain failure returned to the caller as ok:false.
// Two errors match under errors.Is when their codes are equal.
type Error struct {
	Code       Code
	Message    string
	MinimumBid int
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

var (
	ErrRoomExists          = &Error{Code: CodeRoomExists, Message: "room exists"}
	ErrInvalidCapacity     = &Error{Code: CodeInvalidCapacity, Message: fmt.Sprintf("capacity must be %d-%d", MinCapacity, MaxCapacity)}
	ErrRoomNotFound        = &Error{Code: CodeRoomNotFound, Message: "room not found"}
	ErrRoomFull            = &Error{Code: CodeRoomFull, Message: "room is full"}
	ErrAlreadyMember       = &Error{Code: CodeAlreadyMember, Message: "already in room"}
	ErrNotHost             = &Error{Code: CodeNotHost, Message: "only the host can start the game"}
	ErrAlreadyStarted      = &Error{Code: CodeAlreadyStarted, Message: "game already started"}
	ErrNotEnoughMembers    = &Error{Code: CodeNotEnoughMembers, Message: fmt.Sprintf("need at least %d players to start", MinMembersToStart)}
	ErrNoActiveAuction     = &Error{Code: CodeNoActiveAuction, Message: "no active auction"}
	ErrNotAMember          = &Error{Code: CodeNotAMember, Message: "not in room"}
	ErrAlreadySkipped      = &Error{Code: CodeAlreadySkipped, Message: "you skipped this player"}
	ErrTeamFull            = &Error{Code: CodeTeamFull, Message: fmt.Sprintf("team already has %d players", MaxTeamSize)}
	ErrInvalidFirstBid     = &Error{Code: CodeInvalidFirstBid, Message: "first bid must be the base price or one step above"}
	ErrBidTooLow           = &Error{Code: CodeBidTooLow, Message: "bid too low"}
	ErrInsufficientBalance = &Error{Code: CodeInsufficientBalance, Message: "insufficient balance"}
)

func bidTooLow(minimum int) *Error {
	return &Error{
		Code:       CodeBidTooLow,
		Message:    fmt.Sprintf("bid too low, minimum is %d", minimum),
		MinimumBid: minimum,
	}
}

func invalidFirstBid(base, step int) *Error {
	return &Error{
		Code:       CodeInvalidFirstBid,
		Message:    fmt.Sprintf("first bid must be %d or %d", base, base+step),
		MinimumBid: base,
	}
}
