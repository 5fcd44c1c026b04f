/*
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

package rv_as

import (
	"fmt"
	"strings"
)

var abiNames = [32]string{
	"zero", "ra", "sp", "gp", "tp",
	"t0", "t1", "t2",
	"s0", "s1",
	"a0", "a1", "a2", "a3", "a4", "a5", "a6", "a7",
	"s2", "s3", "s4", "s5", "s6", "s7", "s8", "s9", "s10", "s11",
	"t3", "t4", "t5", "t6",
}

var regMap = newRegMap()

func newRegMap() map[string]uint8 {
	m := make(map[string]uint8, 65)
	for i, name := range abiNames {
		m[name] = uint8(i)
		m[fmt.Sprintf("x%d", i)] = uint8(i)
	}
	m["fp"] = 8
	return m
}

// ParseRegister resolves a numeric (x0-x31) or ABI register name to its
// index. Case is ignored.
func ParseRegister(tok string) (uint8, error) {
	tok = strings.ToLower(strings.TrimSpace(tok))
	if r, ok := regMap[tok]; ok {
		return r, nil
	}
	return 0, newError(UnknownRegister, "%q", tok)
}

// RegisterName returns the ABI name of register r.
func RegisterName(r uint8) string {
	return abiNames[r&0x1f]
}
