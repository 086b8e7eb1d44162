package domain

// Location type identifiers
const (
	// LocationOrganizerDefault sentinel-локация "дефолтное конференц-приложение организатора"
	// При переназначении заменяется на ссылку нового организатора
	LocationOrganizerDefault = "conferencing:organizer-default"

	// LocationDefaultVideo видеозвонок по умолчанию, когда ничего другого не настроено
	LocationDefaultVideo = "integrations:default-video"
)

// Locale defaults
const (
	DefaultLocale = "en"
)

// NamelessFallback подставляется вместо пустого имени участника или организатора
const NamelessFallback = "Nameless"

// ActiveStatuses список статусов активных бронирований
var ActiveStatuses = []BookingStatus{
	StatusPending,
	StatusAccepted,
}

// InactiveStatuses список статусов неактивных бронирований
var InactiveStatuses = []BookingStatus{
	StatusCancelled,
	StatusRejected,
}
