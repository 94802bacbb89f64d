//go:build !unix

package term

import "errors"

type Host struct{}

func NewHost(*Keys) *Host { return &Host{} }

func (h *Host) Start() error { return errors.New("term: terminal mode needs a unix terminal") }

func (h *Host) Stop() {}
