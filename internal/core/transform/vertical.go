// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package transform

import (
	"sort"
	"strings"

	"github.com/jaycherian/gcp-go-ad-cloner/internal/cloud"
	"github.com/jaycherian/gcp-go-ad-cloner/internal/core/model"
)

// verticalRule is one detection entry; rules are evaluated in slice order and
// the first keyword hit wins.
type verticalRule struct {
	vertical string
	keywords []string
}

// builtinVerticalRules order matters: solar and energy terms are the most
// specific and must be checked before the broader insurance and finance
// vocabularies that overlap them.
var builtinVerticalRules = []verticalRule{
	{"solar", []string{"solar", "panel", "electric bill", "electricity", "power bill", "energy"}},
	{"auto_insurance", []string{"insurance", "car insurance", "auto insurance", "premium", "coverage"}},
	{"health_insurance", []string{"health", "medical", "doctor", "prescription", "medicare"}},
	{"finance", []string{"money", "bank", "savings", "investment", "credit"}},
	{"fitness", []string{"fitness", "workout", "gym", "weight"}},
	{"ecommerce", []string{"product", "buy", "order", "shipping"}},
	{"saas", []string{"software", "app", "platform", "tool"}},
}

// DefaultVertical is used when no rule matches the transcript.
const DefaultVertical = "ecommerce"

// DetectVertical classifies the ad from its transcript and product text.
// Config-supplied verticals are checked first in priority order, then the
// built-in rule list. An unmatched ad defaults to ecommerce.
func DetectVertical(analysis *model.NormalizedAnalysis, configured map[string]cloud.Vertical) string {
	text := strings.ToLower(analysis.Script.FullTranscript + " " + analysis.Product)

	keys := make([]string, 0, len(configured))
	for key := range configured {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if configured[keys[i]].Priority != configured[keys[j]].Priority {
			return configured[keys[i]].Priority < configured[keys[j]].Priority
		}
		return keys[i] < keys[j]
	})
	for _, key := range keys {
		for _, kw := range configured[key].Keywords {
			if kw != "" && strings.Contains(text, strings.ToLower(kw)) {
				return key
			}
		}
	}

	for _, rule := range builtinVerticalRules {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				return rule.vertical
			}
		}
	}
	return DefaultVertical
}
