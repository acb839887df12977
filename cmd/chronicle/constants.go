package main

// Default limits for CLI commands.
const (
	DefaultSearchLimit = 20
)

// dateSyntaxHelp documents the date argument syntax shared by event commands.
const dateSyntaxHelp = `Date syntax:
  exact:Y[-M[-D]]      an exact story date, e.g. exact:1042-03-12
  year:Y               a year with no finer detail, e.g. year:1042
  approx:LABEL[@Y]     a qualitative date, e.g. "approx:Age of Ash@900"
  after:EVENT:N        N years after another event, e.g. after:ev-123:50
  before:EVENT:N       N years before another event

Negative years are written with a leading minus, e.g. exact:-300-06-01.`
