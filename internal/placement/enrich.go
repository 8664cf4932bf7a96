package placement

import "whispr/internal/models"

// BuildEnriched resolves placement decisions into the final document
// form: attachments per section in decision order, unplaced images
// collected so no uploaded image's analysis is lost. Constructed only
// after every analysis has resolved.
func BuildEnriched(doc models.StructuredDocument, images []models.ImageRecord, decisions []models.PlacementDecision) models.EnrichedDocument {
	byID := make(map[string]models.ImageRecord, len(images))
	for _, img := range images {
		byID[img.SourceID] = img
	}
	enriched := models.EnrichedDocument{
		Document:      doc,
		SectionImages: map[string][]models.ImageRecord{},
		Decisions:     decisions,
	}
	for _, d := range decisions {
		img, ok := byID[d.ImageSourceID]
		if !ok {
			continue
		}
		if d.Placed() {
			if _, exists := doc.SectionByID(*d.TargetSectionID); exists {
				enriched.SectionImages[*d.TargetSectionID] = append(enriched.SectionImages[*d.TargetSectionID], img)
				continue
			}
		}
		enriched.UnplacedImages = append(enriched.UnplacedImages, img)
	}
	return enriched
}
