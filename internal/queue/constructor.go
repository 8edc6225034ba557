package queue

import (
	"github.com/pra2107tham/Reeva/internal/service"
)

type Queue struct {
	ig service.IngestService
}

func NewQueue(ig service.IngestService) *Queue {
	return &Queue{ig: ig}
}
