package service

import (
	"errors"
	"fmt"
)

// QueryError 读取交易所或社交源状态失败（网络、鉴权、数据格式）
// 当前这一轮的决策必须中止，不能假定为安全状态
type QueryError struct {
	Op  string
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query %s failed: %v", e.Op, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// NewQueryError wraps err unless it already is a QueryError.
func NewQueryError(op string, err error) error {
	var qe *QueryError
	if errors.As(err, &qe) {
		return err
	}
	return &QueryError{Op: op, Err: err}
}

// RejectedOrder 交易所拒绝了买单或卖单，Reason 为交易所返回的原因
type RejectedOrder struct {
	Side   string
	Reason string
}

func (e *RejectedOrder) Error() string {
	return fmt.Sprintf("%s order rejected: %s", e.Side, e.Reason)
}

// IsQueryError reports whether err carries a QueryError.
func IsQueryError(err error) bool {
	var qe *QueryError
	return errors.As(err, &qe)
}

// RejectionReason 返回交易所给出的拒绝原因；非拒绝错误返回 err.Error()
func RejectionReason(err error) string {
	if err == nil {
		return ""
	}
	var ro *RejectedOrder
	if errors.As(err, &ro) {
		return ro.Reason
	}
	return err.Error()
}
