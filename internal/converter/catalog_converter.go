package converter

import (
	"massage-booking/internal/delivery/dto"
	"massage-booking/internal/domain/entity"
)

func CatalogToResponse(packages []entity.Package, slots []entity.TimeSlot) *dto.CatalogResponse {
	response := &dto.CatalogResponse{
		Packages:  make([]dto.PackageResponse, len(packages)),
		TimeSlots: make([]dto.TimeSlotResponse, len(slots)),
	}
	for i, p := range packages {
		response.Packages[i] = dto.PackageResponse{Code: string(p.Code), Name: p.Name, Price: p.Price}
	}
	for i, s := range slots {
		response.TimeSlots[i] = dto.TimeSlotResponse{Code: string(s.Code), Label: s.Label}
	}
	return response
}

func SlotCodesToStrings(codes []entity.TimeSlotCode) []string {
	out := make([]string, len(codes))
	for i, c := range codes {
		out[i] = string(c)
	}
	return out
}
