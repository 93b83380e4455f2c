/*
 * MIT License
 *
 * Copyright (c) 2024-2026 Spindle Authors
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

// Package actor implements a tiny actor framework with pluggable executors.
//
// An actor is an isolated unit of state reachable only through message
// passing. Each actor owns a mailbox and a dispatch loop; the loop is the sole
// mutator of the actor's state, so handlers never need locks. Callers reach an
// actor through an Address, either fire-and-forget (Tell) or request/response
// (Ask). Strong addresses extend the actor's lifetime through an explicit
// owner count; weak addresses observe it without doing so.
//
// The dispatch loop only depends on the Executor capability, a two-method
// contract (spawn a unit of work, sleep until a deadline), so the same loop
// runs unmodified on plain goroutines, a worker pool, or any scheduler a host
// application plugs in.
package actor
