package common

import (
	"encoding/json"
	"fmt"
)

type Err struct {
	Code    int
	Msg     string
	TrueErr error
}

func NewErr(code int, msg string) *Err {
	return &Err{
		Code: code,
		Msg:  msg,
	}
}

func (e *Err) Error() string {
	out := struct {
		Code    int
		Msg     string
		TrueErr string `json:",omitempty"`
	}{Code: e.Code, Msg: e.Msg}
	if e.TrueErr != nil {
		out.TrueErr = e.TrueErr.Error()
	}
	err, _ := json.Marshal(out)
	return string(err)
}

func (e *Err) Unwrap() error {
	return e.TrueErr
}

// Is matches on Code so a decorated copy still equals its template.
func (e *Err) Is(target error) bool {
	t, ok := target.(*Err)
	if !ok {
		return false
	}
	if t.Code == e.Code {
		return true
	}
	// a retry give-up is still an overflow
	return e.Code == RetryErr.Code && t.Code == OverflowErr.Code
}

// WithTrueErr returns a copy of e carrying err as its cause.
func (e *Err) WithTrueErr(err error) *Err {
	c := *e
	c.TrueErr = err
	return &c
}

// WithMsg returns a copy of e with a formatted message.
func (e *Err) WithMsg(format string, a ...interface{}) *Err {
	c := *e
	c.Msg = fmt.Sprintf(format, a...)
	return &c
}

var (
	OpErr          = &Err{Code: 10000, Msg: "OpErr"}
	ConnErr        = &Err{Code: 10001, Msg: "ConnErr"}
	StartConnErr   = &Err{Code: 10002, Msg: "StartConnErr"}
	InvalidPathErr = &Err{Code: 10003, Msg: "InvalidPathErr"}
	NoFreeIdErr    = &Err{Code: 10004, Msg: "NoFreeIdErr"}

	ConfigErr   = &Err{Code: 20000, Msg: "ConfigErr"}
	ClockErr    = &Err{Code: 20001, Msg: "ClockErr"}
	OverflowErr = &Err{Code: 20002, Msg: "OverflowErr"}
	RetryErr    = &Err{Code: 20003, Msg: "RetryErr"}
	EncodingErr = &Err{Code: 20004, Msg: "EncodingErr"}
	LengthErr   = &Err{Code: 20005, Msg: "LengthErr"}
)
