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

package progress

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeSpinner struct {
	texts   []string
	success []interface{}
	fail    []interface{}
}

func (s *fakeSpinner) Success(m ...interface{}) { s.success = append(s.success, m...) }
func (s *fakeSpinner) Fail(m ...interface{})    { s.fail = append(s.fail, m...) }
func (s *fakeSpinner) UpdateText(t string)      { s.texts = append(s.texts, t) }

func newFakeReporter() (*Reporter, *[]*fakeSpinner) {
	var spinners []*fakeSpinner
	r := New("Converting", true)
	r.factory = func(text string) (spinner, error) {
		s := &fakeSpinner{texts: []string{text}}
		spinners = append(spinners, s)
		return s, nil
	}
	return r, &spinners
}

func TestReporter(t *testing.T) {
	r, spinners := newFakeReporter()

	r.Start("/data/a.DAT")
	r.Update(0.101)
	r.Update(0.104)
	r.Update(1)
	r.Done(nil, "a.DAT: 3 rows")

	r.Start("/data/b.DAT")
	r.Done(errors.New("boom"), "")

	require.Len(t, *spinners, 2)
	a := (*spinners)[0]
	require.Equal(t, []string{
		"Converting a.DAT...",
		"Converting a.DAT... 10%",
		"Converting a.DAT... 100%",
	}, a.texts)
	require.Equal(t, []interface{}{"a.DAT: 3 rows"}, a.success)
	require.Equal(t, []interface{}{"b.DAT: boom"}, (*spinners)[1].fail)
}

func TestDisabledReporter(t *testing.T) {
	r := New("Viewing", false)
	r.factory = func(string) (spinner, error) {
		t.Fatal("spinner started")
		return nil, nil
	}
	r.Start("a.DAT")
	r.Update(0.5)
	r.Done(nil, "")
}
