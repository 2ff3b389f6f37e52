// Copyright 2026 by the vaultci authors
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy
// of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations
// under the License.

package interpolate

import (
	"errors"
	"strings"
)

// Parse parses s into a Template, or returns an error if s contains malformed
// variable references.
func Parse(s string) (Template, error) {
	p := &parser{src: s}
	t, err := p.template(false)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// parser is a simple recursive descent parser over the source string; pos
// always indexes the next unconsumed byte.
type parser struct {
	src string
	pos int
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) peek() byte { return p.src[p.pos] }

// template parses literal text and references up to the end of the source or,
// when nested, up to and including the closing brace of the enclosing
// reference.
func (p *parser) template(nested bool) (Template, error) {
	t := Template{}
	var text strings.Builder
	flush := func() {
		if text.Len() > 0 {
			t = append(t, Literal(text.String()))
			text.Reset()
		}
	}
	for !p.eof() {
		ch := p.peek()
		switch {
		case ch == '}' && nested:
			p.pos++
			flush()
			return t, nil
		case ch == '$':
			p.pos++
			if p.eof() {
				return nil, errors.New("invalid stand-alone $")
			}
			switch next := p.peek(); {
			case next == '$':
				p.pos++
				text.WriteByte('$')
			case next == '{':
				p.pos++
				ref, err := p.braced()
				if err != nil {
					return nil, err
				}
				flush()
				t = append(t, ref)
			case isNameStart(next):
				flush()
				t = append(t, Reference{Name: p.name()})
			default:
				text.WriteByte('$')
			}
		default:
			p.pos++
			text.WriteByte(ch)
		}
	}
	if nested {
		return nil, errors.New("unterminated ${")
	}
	flush()
	return t, nil
}

// braced parses the remainder of a “${...}” reference after the opening brace.
func (p *parser) braced() (Reference, error) {
	name := p.name()
	if name == "" {
		return Reference{}, errors.New("missing variable name after ${")
	}
	if p.eof() {
		return Reference{}, errors.New("unterminated ${")
	}
	op := ""
	switch ch := p.peek(); ch {
	case '}':
		p.pos++
		return Reference{Name: name}, nil
	case ':':
		p.pos++
		if p.eof() {
			return Reference{}, errors.New("incomplete variable substitution operation")
		}
		op = ":"
	}
	switch ch := p.peek(); ch {
	case '-', '?', '+':
		p.pos++
		op += string(ch)
	default:
		return Reference{}, errors.New("invalid variable substitution operation")
	}
	alt, err := p.template(true)
	if err != nil {
		return Reference{}, err
	}
	return Reference{Name: name, Op: op, Alt: alt}, nil
}

// name consumes and returns the longest variable name at the current
// position, which might be "".
func (p *parser) name() string {
	start := p.pos
	for !p.eof() {
		ch := p.peek()
		if !isNameStart(ch) && !(p.pos > start && ch >= '0' && ch <= '9') {
			break
		}
		p.pos++
	}
	return p.src[start:p.pos]
}

func isNameStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}
