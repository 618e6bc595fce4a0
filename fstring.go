// Copyright 2026 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mindy

import "strings"

// An fstring is a string that keeps track of its position within the
// source from which it was read.
type fstring struct {
	row    int    // 1-based line number of substring
	column int    // 0-based column of start of substring
	str    string // the actual substring of interest
	full   string // the full line as originally read
}

func newFstring(row int, str string) fstring {
	return fstring{row, 0, str, str}
}

func (l fstring) consume(n int) fstring {
	return fstring{l.row, l.column + n, l.str[n:], l.full}
}

func (l fstring) trunc(n int) fstring {
	return fstring{l.row, l.column, l.str[:n], l.full}
}

func (l *fstring) isEmpty() bool {
	return len(l.str) == 0
}

func (l *fstring) startsWithChar(c byte) bool {
	return len(l.str) > 0 && l.str[0] == c
}

func (l *fstring) scanWhile(fn func(c byte) bool) int {
	i := 0
	for ; i < len(l.str) && fn(l.str[i]); i++ {
	}
	return i
}

func (l fstring) consumeWhitespace() fstring {
	return l.consume(l.scanWhile(whitespace))
}

// A token is one whitespace-delimited word of an mlog line. Quoted
// tokens preserve internal whitespace and record that they were
// string literals.
type token struct {
	text   string
	quoted bool
	pos    fstring
}

// nextToken scans one token off the front of the line. Double-quoted
// strings preserve internal whitespace; the only recognized escape is
// \n, which becomes a newline. An unterminated string runs to end of
// line. A '#' outside quotes ends the line.
func (l fstring) nextToken() (t token, remain fstring, ok bool) {
	l = l.consumeWhitespace()
	if l.isEmpty() || l.startsWithChar('#') {
		return token{}, l.trunc(0), false
	}

	if l.startsWithChar('"') {
		body := l.consume(1)
		n := body.scanWhile(func(c byte) bool { return c != '"' })
		text := strings.ReplaceAll(body.str[:n], `\n`, "\n")
		t = token{text: text, quoted: true, pos: l}
		if n < len(body.str) {
			n++ // closing quote
		}
		return t, body.consume(n), true
	}

	n := l.scanWhile(wordChar)
	return token{text: l.str[:n], pos: l}, l.consume(n), true
}

// tokenizeLine splits one physical source line into tokens.
func tokenizeLine(row int, text string) []token {
	var toks []token
	l := newFstring(row, text)
	for {
		t, remain, ok := l.nextToken()
		if !ok {
			return toks
		}
		toks = append(toks, t)
		l = remain
	}
}

//
// character helper functions
//

func whitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r'
}

func wordChar(c byte) bool {
	return c != ' ' && c != '\t' && c != '\r' && c != '#'
}

func decimal(c byte) bool {
	return c >= '0' && c <= '9'
}
