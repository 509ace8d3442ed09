// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package badger

import (
	"fmt"

	"github.com/poiesic/conformit/core"
)

const (
	templateRecordPrefix = "tmplrec"
)

// makeTemplateKey generates a key for a template from its name.
// Names may contain '/' and spaces, so the key uses the content ID of the name.
func makeTemplateKey(name string) []byte {
	return []byte(fmt.Sprintf("%s:%d", templateRecordPrefix, core.IDFromContent(name)))
}

// templatePrefix is the iteration prefix covering every template record.
func templatePrefix() []byte {
	return []byte(templateRecordPrefix + ":")
}
