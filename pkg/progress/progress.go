/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

// Package progress shows per-file spinners on the terminal.
package progress

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/pterm/pterm"

	"jinr.ru/greenlab/go-thw/pkg/log"
)

type spinner interface {
	Success(...interface{})
	Fail(...interface{})
	UpdateText(string)
}

type spinnerFactory func(text string) (spinner, error)

var defaultSpinnerFactory spinnerFactory = func(text string) (spinner, error) {
	s, err := pterm.DefaultSpinner.
		WithRemoveWhenDone(false).
		WithText(text).
		Start()
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Reporter runs one spinner per file. A disabled reporter does nothing.
type Reporter struct {
	mu       sync.Mutex
	verb     string
	disabled bool
	factory  spinnerFactory
	current  spinner
	name     string
	percent  string
}

// New returns a reporter labelling work with verb, e.g. "Converting".
func New(verb string, enabled bool) *Reporter {
	return &Reporter{
		verb:     verb,
		disabled: !enabled,
		factory:  defaultSpinnerFactory,
	}
}

// Start begins the spinner of path.
func (r *Reporter) Start(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.name = filepath.Base(path)
	r.percent = ""
	if r.disabled {
		return
	}
	s, err := r.factory(fmt.Sprintf("%s %s...", r.verb, r.name))
	if err != nil {
		log.Debug("Error while starting spinner: %v", err)
		return
	}
	r.current = s
}

// Update shows the fraction done. The text only changes when the whole
// percentage does.
func (r *Reporter) Update(fraction float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	percent := fmt.Sprintf("%.0f", fraction*100)
	if percent == r.percent {
		return
	}
	r.percent = percent
	if r.current != nil {
		r.current.UpdateText(fmt.Sprintf("%s %s... %s%%", r.verb, r.name, percent))
	}
}

// Done stops the spinner with a success or failure mark.
func (r *Reporter) Done(err error, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return
	}
	if err != nil {
		r.current.Fail(fmt.Sprintf("%s: %v", r.name, err))
	} else {
		r.current.Success(message)
	}
	r.current = nil
}
