package compiler

import "github.com/xirelogy/go-rox/internal/bytecode"

type Chunk = bytecode.Chunk
