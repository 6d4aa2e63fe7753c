// Package registry holds the ordered collection of live containers and answers
// "who is top". It is an explicit service object handed to the coordinator; there
// is no package-level instance.
package registry
