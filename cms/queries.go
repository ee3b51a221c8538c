package cms

const listingProjection = `{
  _id,
  title,
  slug,
  price,
  address,
  propertyDetails,
  status,
  heroMedia,
  category,
  description
}`

const blogProjection = `{
  _id,
  title,
  slug,
  excerpt,
  publishedAt,
  "categories": categories[]->title,
  category,
  "author": author->name,
  readTime,
  mainImage,
  "imageUrl": mainImage.asset->url,
  body
}`

const pressProjection = `{
  _id,
  title,
  slug,
  excerpt,
  publishedAt,
  releaseDate,
  category,
  source,
  sourceUrl,
  location,
  featured,
  image,
  "imageUrl": image.asset->url,
  body
}`

const (
	listingsByCategoryQuery = `*[_type == "listing" && category == $category] | order(_createdAt desc) ` + listingProjection
	allListingsQuery        = `*[_type == "listing"] | order(_createdAt desc) ` + listingProjection
	listingBySlugQuery      = `*[_type == "listing" && slug.current == $slug][0] ` + listingProjection

	// Featured entries reference either a CMS listing or an MLS snapshot
	// document carrying listingKey/standardStatus, so no single projection
	// applies.
	featuredQuery = `*[_type == "featuredListings"][0].items[]->`

	blogPostsQuery           = `*[_type == "post"] | order(publishedAt desc) ` + blogProjection
	blogPostsByCategoryQuery = `*[_type == "post" && $category in categories[]->title] | order(publishedAt desc) ` + blogProjection
	blogPostBySlugQuery      = `*[_type == "post" && slug.current == $slug][0] ` + blogProjection

	pressReleasesQuery      = `*[_type == "pressRelease"] | order(coalesce(releaseDate, publishedAt) desc) ` + pressProjection
	pressReleaseBySlugQuery = `*[_type == "pressRelease" && slug.current == $slug][0] ` + pressProjection
)
