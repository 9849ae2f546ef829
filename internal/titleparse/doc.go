// Package titleparse turns release titles into matching.Candidate values.
//
// Two backends implement Parser: LLMParser asks an OpenAI-compatible chat model
// for a JSON reading of the title, and ReleaseParser works offline from the
// common fansub shape ("[Group] Show - 05 (1080p)") with moistari/rls as the
// fallback for scene-style names. Either can be wrapped in a CachedParser,
// which memoizes readings by exact title in a pudge file with a TTL.
//
// A nil candidate with a nil error means the title could not be read. Validate
// applies the boundary policy scans use before handing candidates to the
// matcher.
package titleparse
