// Package chat answers volunteer questions from the FAQ document. Questions are embedded and
// matched against embedded FAQ chunks, a few keyword matches are added, and a chat model answers
// from that context only. Every question and answer is written to the chat log.
package chat
