package model

// SeedPosts returns the sample collection used when nothing has been persisted yet.
func SeedPosts() []Post {
	return []Post{
		{
			ID:      1,
			Title:   "Getting Started with React Animation",
			Content: "Learn how to create smooth animations in React using Framer Motion and GSAP...",
			Image:   "https://images.unsplash.com/photo-1633356122544-f134324a6cee?w=500",
			Date:    "2024-01-15",
			Author:  "Sachin Oli",
		},
		{
			ID:      2,
			Title:   "Building Modern Portfolios",
			Content: "Discover the best practices for creating stunning portfolio websites that stand out...",
			Image:   "https://images.unsplash.com/photo-1467232004584-a241de8bcf5d?w=500",
			Date:    "2024-01-10",
			Author:  "Sachin Oli",
		},
	}
}
