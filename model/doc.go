// Package model defines the minimal reasoning-engine contract consumed by
// stages and the classifier, plus a deterministic MockModel for tests.
// Concrete adapters for hosted providers live in the subpackages
// model/openai (any OpenAI-compatible gateway) and model/anthropic.
//
// Stages depend only on the Model interface; provider selection happens at
// wiring time. All adapters are plain request/response — retry, timeout and
// failure tolerance are owned by the dispatcher, not the adapters.
package model
