package apperr

import (
	"errors"
	"fmt"
)

// Kind 错误类别，决定HTTP状态码映射
type Kind int

const (
	KindNotFound           Kind = iota + 1 // 资源不存在
	KindUnauthorized                       // 调用者角色不符
	KindInvalidArgument                    // 参数非法
	KindPreconditionFailed                 // 状态机前置条件不满足
	KindInvariantViolation                 // 内部一致性被破坏，致命
)

// 稳定错误码，前端据此渲染具体提示
const (
	CodeNotFound                 = "NOT_FOUND"
	CodeNotCreator               = "NOT_CREATOR"
	CodeNotSupporter             = "NOT_SUPPORTER"
	CodeInvalidAmount            = "INVALID_AMOUNT"
	CodeInvalidMilestoneBudget   = "INVALID_MILESTONE_BUDGET"
	CodeInvalidArgument          = "INVALID_ARGUMENT"
	CodeAlreadyReleased          = "ALREADY_RELEASED"
	CodeFundingIncomplete        = "FUNDING_INCOMPLETE"
	CodeFundingClosed            = "FUNDING_CLOSED"
	CodePriorMilestoneIncomplete = "PRIOR_MILESTONE_INCOMPLETE"
	CodeNotReleased              = "NOT_RELEASED"
	CodeAlreadyCompleted         = "ALREADY_COMPLETED"
	CodeVotingAlreadyActive      = "VOTING_ALREADY_ACTIVE"
	CodeVotingNotActive          = "VOTING_NOT_ACTIVE"
	CodeVotingClosed             = "VOTING_CLOSED"
	CodeDeadlineNotReached       = "DEADLINE_NOT_REACHED"
	CodeAlreadyVoted             = "ALREADY_VOTED"
	CodeInsufficientEscrow       = "INSUFFICIENT_ESCROW"
)

// Error 业务错误
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// New 创建业务错误
func New(kind Kind, code, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// NotFound 资源不存在
func NotFound(format string, args ...interface{}) *Error {
	return New(KindNotFound, CodeNotFound, format, args...)
}

// Unauthorized 调用者角色不符
func Unauthorized(code, format string, args ...interface{}) *Error {
	return New(KindUnauthorized, code, format, args...)
}

// InvalidArgument 参数非法
func InvalidArgument(code, format string, args ...interface{}) *Error {
	return New(KindInvalidArgument, code, format, args...)
}

// PreconditionFailed 状态机前置条件不满足
func PreconditionFailed(code, format string, args ...interface{}) *Error {
	return New(KindPreconditionFailed, code, format, args...)
}

// InvariantViolation 内部一致性被破坏
func InvariantViolation(code, format string, args ...interface{}) *Error {
	return New(KindInvariantViolation, code, format, args...)
}

// AsError 提取业务错误，非业务错误返回 nil
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}

// IsKind 判断错误类别
func IsKind(err error, kind Kind) bool {
	e := AsError(err)
	return e != nil && e.Kind == kind
}

// IsCode 判断错误码
func IsCode(err error, code string) bool {
	e := AsError(err)
	return e != nil && e.Code == code
}
