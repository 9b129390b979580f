// Copyright 2015 The go-probeum Authors
// This file is part of the florinscan library.
//
// The florinscan library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The florinscan library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the florinscan library. If not, see <http://www.gnu.org/licenses/>.

package supervisor

import (
	"fmt"
	"sync"

	"github.com/dop251/goja"

	"github.com/florinscan/florinscan/peeraddr"
)

// admissionPolicy lets an operator veto candidate peers with a small
// script instead of a recompiled binary, the same role JS tracing hooks
// play for transaction tracing elsewhere: a sandboxed predicate
// evaluated once per call, not a plugin ABI. The script must define a
// function `admit(host, port)` returning a boolean; its absence (empty
// source) means admit everything.
type admissionPolicy struct {
	mu  sync.Mutex
	vm  *goja.Runtime
	fn  goja.Callable
	has bool
}

func newAdmissionPolicy(src string) (*admissionPolicy, error) {
	p := &admissionPolicy{}
	if src == "" {
		return p, nil
	}
	vm := goja.New()
	if _, err := vm.RunString(src); err != nil {
		return nil, fmt.Errorf("admission policy script: %w", err)
	}
	admitVal := vm.Get("admit")
	if admitVal == nil || goja.IsUndefined(admitVal) {
		return nil, fmt.Errorf("admission policy script must define function admit(host, port)")
	}
	fn, ok := goja.AssertFunction(admitVal)
	if !ok {
		return nil, fmt.Errorf("admission policy: admit is not callable")
	}
	p.vm, p.fn, p.has = vm, fn, true
	return p, nil
}

// allow evaluates the policy against a candidate address. A script
// runtime error is treated as a rejection: a broken policy should fail
// closed, not silently admit everything.
func (p *admissionPolicy) allow(addr peeraddr.Address) bool {
	if !p.has {
		return true
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	res, err := p.fn(goja.Undefined(), p.vm.ToValue(addr.Host), p.vm.ToValue(addr.Port))
	if err != nil {
		return false
	}
	return res.ToBoolean()
}
