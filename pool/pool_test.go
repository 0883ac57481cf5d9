/*
 * Copyright 2025 Comcast Cable Communications Management, LLC
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package pool

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_Pool_Run(t *testing.T) {
	assert := assert.New(t)

	errBoom := errors.New("boom")

	tasks := []*Task{
		NewTask(func() ([]byte, error) {
			return []byte("one"), nil
		}),
		NewTask(func() ([]byte, error) {
			return nil, errBoom
		}),
		NewTask(func() ([]byte, error) {
			return []byte("three"), nil
		}),
	}

	NewPool(tasks, 2).Run()

	assert.Equal([]byte("one"), tasks[0].Body)
	assert.Nil(tasks[0].Err)
	assert.Equal(errBoom, tasks[1].Err)
	assert.Equal([]byte("three"), tasks[2].Body)
	assert.Nil(tasks[2].Err)
}

// the in-flight task count must never exceed the configured concurrency
func Test_Pool_BoundedConcurrency(t *testing.T) {
	assert := assert.New(t)

	const concurrency = 4

	var inFlight, peak int64
	tasks := make([]*Task, 0, 32)
	for i := 0; i < 32; i++ {
		tasks = append(tasks, NewTask(func() ([]byte, error) {
			n := atomic.AddInt64(&inFlight, 1)
			for {
				p := atomic.LoadInt64(&peak)
				if n <= p || atomic.CompareAndSwapInt64(&peak, p, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt64(&inFlight, -1)
			return nil, nil
		}))
	}

	NewPool(tasks, concurrency).Run()

	assert.LessOrEqual(atomic.LoadInt64(&peak), int64(concurrency))
	assert.Greater(atomic.LoadInt64(&peak), int64(0))
}

func Test_NewPool_ClampsConcurrency(t *testing.T) {
	assert := assert.New(t)

	ran := false
	tasks := []*Task{
		NewTask(func() ([]byte, error) {
			ran = true
			return nil, nil
		}),
	}

	NewPool(tasks, 0).Run()
	assert.True(ran)
}
