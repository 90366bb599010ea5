// Package model contains the language model providers driving the reasoning
// loop. All providers implement core.ModelProvider: a stateless
// prompt-plus-history call returning the completion text and a token count.
//
// The package ships a deterministic MockProvider for tests and examples and a
// RetryProvider decorator adding exponential backoff around transient
// failures. Vendor adapters live in the model/anthropic and model/openai
// subpackages.
package model
