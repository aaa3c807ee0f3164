// Copyright © 2024 The skani-go Authors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

// Package regression is the learned-ANI postprocess collaborator (§4.6): an
// optional small model that nudges the chainer's raw identity estimate. Its
// training and internal structure are a Non-goal; what's implemented here
// is a minimal compiled-in correction, enough to exercise the core's
// "apply once at the end (Dist) vs. per-pair (Triangle)" placement rule.
package regression

import "github.com/alienzj/skani-go"

// Model is a tiny linear correction keyed by the sketch compression value
// it was fit against.
type Model struct {
	C           int
	Slope       float64
	Intercept   float64
}

// compiled-in models, one per supported sketch compression value. Real
// models would be fit offline; these coefficients are a placeholder
// identity-ish correction (slope near 1, small intercept).
var compiledModels = map[int]Model{
	30:  {C: 30, Slope: 1.01, Intercept: -0.15},
	100: {C: 100, Slope: 1.02, Intercept: -0.30},
	200: {C: 200, Slope: 1.03, Intercept: -0.45},
}

// GetModel returns a model iff learnedANI is set and a compiled-in model
// matches c. Returns (nil, false) otherwise — the core treats a missing
// model as "do not apply regression" (§4.6).
func GetModel(c int, learnedANI bool) (*Model, bool) {
	if !learnedANI {
		return nil, false
	}
	m, ok := compiledModels[c]
	if !ok {
		return nil, false
	}
	return &m, true
}

// PredictFromAniRes adjusts ani.Ani in place using model. Called once over
// the whole accumulator in Dist mode, inline per pair in Triangle mode
// (§4.4, §9 "Regression application placement").
func PredictFromAniRes(ani *skani.AniEstimate, model *Model) {
	if model == nil || ani == nil {
		return
	}
	adjusted := model.Slope*ani.Ani + model.Intercept
	if adjusted < 0 {
		adjusted = 0
	}
	if adjusted > 100 {
		adjusted = 100
	}
	ani.Ani = adjusted
}
