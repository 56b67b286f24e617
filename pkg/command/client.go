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

package command

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/imroc/req"
	"github.com/pkg/errors"

	"jinr.ru/greenlab/go-thw/pkg/catalog"
	"jinr.ru/greenlab/go-thw/pkg/command/ifc"
	"jinr.ru/greenlab/go-thw/pkg/config"
	"jinr.ru/greenlab/go-thw/pkg/srv"
)

type ApiClient struct {
	ApiPrefix string
}

var _ ifc.ApiClient = &ApiClient{}

func NewApiClient(cfg *config.Config) ifc.ApiClient {
	return NewApiClientForURL(cfg.ApiURL())
}

// NewApiClientForURL returns a client of the server at baseURL, e.g.
// http://127.0.0.1:8010
func NewApiClientForURL(baseURL string) *ApiClient {
	return &ApiClient{
		ApiPrefix: strings.TrimSuffix(baseURL, "/") + srv.ApiPrefix,
	}
}

func (c *ApiClient) url(endpoint string) string {
	return fmt.Sprintf("%s/%s", c.ApiPrefix, endpoint)
}

// Range asks the server for the time ranges of a file or directory on
// the server side.
func (c *ApiClient) Range(path, settings string) (*srv.RangeResponse, error) {
	param := req.Param{"path": path}
	if settings != "" {
		param["settings"] = settings
	}
	r, err := req.Get(c.url("range"), param)
	if err != nil {
		return nil, err
	}
	if err := checkStatus(r); err != nil {
		return nil, err
	}
	resp := &srv.RangeResponse{}
	if err := r.ToJSON(resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Convert asks the server to export a file or directory on the server side.
func (c *ApiClient) Convert(convertReq *srv.ConvertRequest) (*srv.ConvertResponse, error) {
	r, err := req.Post(c.url("convert"), req.BodyJSON(convertReq))
	if err != nil {
		return nil, err
	}
	if err := checkStatus(r); err != nil {
		return nil, err
	}
	resp := &srv.ConvertResponse{}
	if err := r.ToJSON(resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Catalog lists the time ranges cached by the server.
func (c *ApiClient) Catalog() ([]catalog.Entry, error) {
	r, err := req.Get(c.url("catalog"))
	if err != nil {
		return nil, err
	}
	if err := checkStatus(r); err != nil {
		return nil, err
	}
	var entries []catalog.Entry
	if err := r.ToJSON(&entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func checkStatus(r *req.Resp) error {
	if r.Response().StatusCode != http.StatusOK {
		return errors.Errorf("%s: %s", r.Response().Status, strings.TrimSpace(r.String()))
	}
	return nil
}
