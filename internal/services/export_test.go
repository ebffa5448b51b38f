package services

import "brand-video-backend/internal/models"

func (s *VideoService) SetIDGenerator(fn func() string) { s.newID = fn }

func (s *VideoService) SetScriptComposer(fn func(models.BrandRequest) []models.ScriptLine) {
	s.compose = fn
}
