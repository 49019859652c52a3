// Command introspect analyzes video journal entries for mental health
// indicators by fusing facial emotion, vocal emotion, and transcript
// analysis.
package main
