package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/nikita-666666/valet-parking-app-sub000/internal/app/ds"
)

// Методы для справочника сотрудников (только чтение)

// EmployeeByID возвращает сотрудника по id.
func (r *Repository) EmployeeByID(id uint) (*ds.Employee, error) {
	var employee ds.Employee
	err := r.db.First(&employee, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ds.NotFound("сотрудник %d не найден", id)
		}
		return nil, err
	}
	return &employee, nil
}

// ActiveEmployees возвращает активных сотрудников.
func (r *Repository) ActiveEmployees() ([]ds.Employee, error) {
	var employees []ds.Employee
	err := r.db.Where("is_active = ?", true).Order("id ASC").Find(&employees).Error
	return employees, err
}
