package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/domain/geo"
)

func TestConditionsNumbersParameters(t *testing.T) {
	cond := &conditions{}
	cond.add("category = %s", "books")
	cond.add("price BETWEEN %s AND %s", 10.0, 20.0)

	assert.Equal(t, " WHERE category = $1 AND price BETWEEN $2 AND $3", cond.where())
	assert.Equal(t, []interface{}{"books", 10.0, 20.0}, cond.args)
}

func TestConditionsEmptyWhere(t *testing.T) {
	cond := &conditions{}
	assert.Equal(t, "", cond.where())
}

func TestConditionsBoundingBox(t *testing.T) {
	cond := &conditions{}
	cond.boundingBox("latitude", "longitude", geo.BoundingBox{
		MinLat: -1, MaxLat: 1, MinLng: -2, MaxLng: 2,
	})
	cond.add("rating >= %s", 4.0)

	assert.Equal(t,
		" WHERE latitude IS NOT NULL AND longitude IS NOT NULL"+
			" AND latitude BETWEEN $1 AND $2"+
			" AND longitude BETWEEN $3 AND $4"+
			" AND rating >= $5",
		cond.where())
	assert.Len(t, cond.args, 5)
}

func TestConditionsNextContinuesNumbering(t *testing.T) {
	cond := &conditions{}
	cond.add("category = %s", "books")

	assert.Equal(t, "$2", cond.next(50))
	assert.Equal(t, []interface{}{"books", 50}, cond.args)
}
